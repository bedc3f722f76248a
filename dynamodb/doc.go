// Package dynamodb provides a DynamoDB-backed implementation of the
// [github.com/slackmgr/contacts.Store] interface.
//
// # Overview
//
// Contacts live in a single table with a simple primary key. Every item is
// keyed by its contactId (partition key, no sort key) and carries two string
// attributes:
//
//	{"contactId": {"S": "..."}, "name": {"S": "..."}, "telephone": {"S": "..."}}
//
// The table is expected to have a stream enabled with the NEW_AND_OLD_IMAGES
// view type so that the change listener sees both sides of every mutation.
// [Client.Init] verifies this, and [Client.CreateTable] creates a table with
// that layout.
//
// # Getting Started
//
// Create a [Client] with [New], supplying an AWS config, the DynamoDB table
// name, and any [Option] values you need:
//
//	client := dynamodb.New(&awsCfg, tableName,
//	    dynamodb.WithEndpoint("http://localhost:8000"),
//	)
//
//	if err := client.Connect(); err != nil {
//	    return err
//	}
//
// By default, [Client.Connect] creates an AWS SDK v2 DynamoDB client from the
// supplied [aws.Config]. Supply [WithAPI] to inject a custom or mock
// implementation.
//
// # Stream Images
//
// [ContactIDFromImage] decodes the contactId from a DynamoDB Streams image as
// delivered to a Lambda function by [github.com/aws/aws-lambda-go/events].
//
// # Concurrency
//
// [Client] is safe for concurrent use by multiple goroutines once
// [Client.Connect] has returned.
package dynamodb
