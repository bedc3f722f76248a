// Package contacts defines the contact record, the store contract shared by
// the request handlers, and the process configuration read from the
// environment.
//
// # Layout
//
//   - [github.com/slackmgr/contacts/dynamodb] implements [Store] on a DynamoDB
//     table keyed by contactId.
//   - [github.com/slackmgr/contacts/api] holds the list, get and create
//     handlers invoked through API Gateway proxy integration.
//   - [github.com/slackmgr/contacts/stream] holds the DynamoDB Streams
//     listener that logs contact changes.
//   - [github.com/slackmgr/contacts/devserver] serves the same handlers over
//     plain HTTP for local development.
//
// Each handler is an independent Lambda function; the binaries live under
// cmd/.
package contacts
