// Command list-contacts is the AWS Lambda function serving the ListContacts operation.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/slackmgr/contacts/internal/bootstrap"
)

func main() {
	h, logger, err := bootstrap.NewAPIHandler(context.Background())
	if err != nil {
		logger.Fatalf("Failed to initialize ListContacts handler: %v", err)
	}

	lambda.Start(h.ListContacts)
}
