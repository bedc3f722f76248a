// Command create-contact is the AWS Lambda function serving the CreateContact operation.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/slackmgr/contacts/internal/bootstrap"
)

func main() {
	h, logger, err := bootstrap.NewAPIHandler(context.Background())
	if err != nil {
		logger.Fatalf("Failed to initialize CreateContact handler: %v", err)
	}

	lambda.Start(h.CreateContact)
}
