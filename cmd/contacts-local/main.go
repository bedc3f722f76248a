// Command contacts-local runs the contact handlers outside Lambda, usually
// against DynamoDB Local.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/sirupsen/logrus"
	"github.com/slackmgr/contacts"
	"github.com/slackmgr/contacts/dynamodb"
	"github.com/slackmgr/contacts/logging"
	"github.com/spf13/cobra"
)

const (
	localAccessKey = "local"
	localRegion    = "us-east-1"
)

// storeFlags are shared by every subcommand that talks to DynamoDB.
type storeFlags struct {
	table           string
	region          string
	endpoint        string
	maxRetries      int
	maxRetryBackoff time.Duration
	logLevel        string
	logFormat       string
}

var flags storeFlags

var rootCmd = &cobra.Command{
	Use:   "contacts-local",
	Short: "Run the contacts API locally.",
	Long: `Run the contacts API locally.

The same handlers deployed as Lambda functions are served over plain HTTP.
Point --endpoint at DynamoDB Local to avoid touching a real table.
`,
	SilenceUsage: true,
}

func init() {
	cfg := contacts.LoadConfig()

	rootCmd.PersistentFlags().StringVarP(&flags.table, "table", "t", cfg.TableName, "DynamoDB table name (defaults to $"+contacts.TableNameEnv+")")
	rootCmd.PersistentFlags().StringVarP(&flags.region, "region", "r", "", "AWS region (defaults to the AWS SDK configuration)")
	rootCmd.PersistentFlags().StringVarP(&flags.endpoint, "endpoint", "e", "", "DynamoDB endpoint URL, e.g. http://localhost:8000")
	rootCmd.PersistentFlags().IntVar(&flags.maxRetries, "max-retry-attempts", 0, "Max attempts per DynamoDB call, 0-10 (0 keeps the SDK default)")
	rootCmd.PersistentFlags().DurationVar(&flags.maxRetryBackoff, "max-retry-backoff", 0, "Max delay between DynamoDB retries, up to 30s (0 keeps the SDK default)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", cfg.LogFormat, "Log format (json or text)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func (f storeFlags) config() contacts.Config {
	return contacts.Config{
		TableName: f.table,
		LogLevel:  f.logLevel,
		LogFormat: f.logFormat,
	}
}

func (f storeFlags) logger() *logrus.Logger {
	return logging.New(logging.Options{
		Level:  f.logLevel,
		Format: f.logFormat,
	})
}

// connect builds a connected DynamoDB client from the flags.
func (f storeFlags) connect(ctx context.Context, logger logrus.FieldLogger) (*dynamodb.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if f.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(f.region))
	}

	// DynamoDB Local accepts any credentials but still requires signed requests.
	if f.endpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(localAccessKey, localAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if f.endpoint != "" && awsCfg.Region == "" {
		awsCfg.Region = localRegion
	}

	client := dynamodb.New(&awsCfg, f.table, f.storeOptions(logger)...)
	if err := client.Connect(); err != nil {
		return nil, err
	}

	return client, nil
}

func (f storeFlags) storeOptions(logger logrus.FieldLogger) []dynamodb.Option {
	opts := []dynamodb.Option{
		dynamodb.WithLogger(logger),
		dynamodb.WithMaxRetryAttempts(f.maxRetries),
		dynamodb.WithMaxRetryBackoffDelay(f.maxRetryBackoff),
	}

	if f.endpoint != "" {
		opts = append(opts, dynamodb.WithEndpoint(f.endpoint))
	}

	return opts
}
