package dynamodb

import (
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Option is a functional option for configuring a [Client].
type Option func(*Options)

// Options holds the configuration for a [Client]. Use [Option] functions
// (such as [WithEndpoint] or [WithMaxRetryAttempts]) to customise the
// defaults.
type Options struct {
	endpoint             string
	maxRetryAttempts     int
	maxRetryBackoffDelay time.Duration
	tableCreationMaxWait time.Duration
	dynamoDBAPI          API
	logger               logrus.FieldLogger
}

func newOptions() *Options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return &Options{
		tableCreationMaxWait: 2 * time.Minute,
		logger:               discard,
	}
}

func (o *Options) validate() error {
	if o.maxRetryAttempts < 0 || o.maxRetryAttempts > 10 {
		return errors.New("max DynamoDB API retry attempts must be between 0 and 10")
	}

	if o.maxRetryBackoffDelay < 0 || o.maxRetryBackoffDelay > 30*time.Second {
		return errors.New("max DynamoDB API retry backoff delay must be between 0 and 30 seconds")
	}

	if o.tableCreationMaxWait <= 0 {
		return errors.New("table creation max wait must be greater than zero")
	}

	if o.logger == nil {
		return errors.New("logger cannot be nil")
	}

	return nil
}

// WithEndpoint overrides the DynamoDB endpoint URL, for example to target
// DynamoDB Local at http://localhost:8000. The default is the regional AWS
// endpoint.
func WithEndpoint(url string) Option {
	return func(o *Options) {
		o.endpoint = url
	}
}

// WithMaxRetryAttempts sets the maximum number of attempts made by the SDK
// retryer for each DynamoDB API call. Must be between 0 and 10. Zero keeps
// the SDK default.
func WithMaxRetryAttempts(n int) Option {
	return func(o *Options) {
		o.maxRetryAttempts = n
	}
}

// WithMaxRetryBackoffDelay caps the delay between SDK retry attempts. Must be
// between 0 and 30 seconds. Zero keeps the SDK default.
func WithMaxRetryBackoffDelay(d time.Duration) Option {
	return func(o *Options) {
		o.maxRetryBackoffDelay = d
	}
}

// WithTableCreationMaxWait bounds how long [Client.CreateTable] waits for a
// new table to become active. The default is 2 minutes.
func WithTableCreationMaxWait(d time.Duration) Option {
	return func(o *Options) {
		o.tableCreationMaxWait = d
	}
}

// WithAPI sets a custom [API] implementation. This is useful when a custom
// DynamoDB configuration is required, or for injecting mocks in tests.
func WithAPI(api API) Option {
	return func(o *Options) {
		o.dynamoDBAPI = api
	}
}

// WithLogger sets the logger used for debug output such as consumed
// capacity. By default the client does not log.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}
