// Package bootstrap wires the shared cold-start dependencies of the Lambda
// functions: configuration, logger, AWS config and the DynamoDB store.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/sirupsen/logrus"
	"github.com/slackmgr/contacts"
	"github.com/slackmgr/contacts/api"
	"github.com/slackmgr/contacts/dynamodb"
	"github.com/slackmgr/contacts/logging"
	"github.com/slackmgr/contacts/stream"
)

// Logger builds the process logger from cfg.
func Logger(cfg contacts.Config) *logrus.Logger {
	return logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
}

// NewAPIHandler loads the configuration and AWS settings from the environment
// and returns a request handler backed by DynamoDB. A missing table name is
// not an error here; the handler reports it on every invocation.
func NewAPIHandler(ctx context.Context) (*api.Handler, *logrus.Logger, error) {
	cfg := contacts.LoadConfig()
	logger := Logger(cfg)

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, logger, fmt.Errorf("failed to load AWS config: %w", err)
	}

	store := dynamodb.New(&awsCfg, cfg.TableName, dynamodb.WithLogger(logger))

	if err := store.Connect(); err != nil {
		return nil, logger, err
	}

	return api.New(cfg, store, logger), logger, nil
}

// NewListener returns the stream listener. It needs no table or AWS access.
func NewListener() *stream.Listener {
	return stream.NewListener(Logger(contacts.LoadConfig()))
}
