// Command contacts-table-stream is the AWS Lambda function consuming the
// contacts table stream.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/slackmgr/contacts/internal/bootstrap"
)

func main() {
	lambda.Start(bootstrap.NewListener().Handle)
}
