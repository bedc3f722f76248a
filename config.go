package contacts

import "os"

const (
	// TableNameEnv names the environment variable holding the DynamoDB table name.
	TableNameEnv = "TABLE_NAME"

	// LogLevelEnv names the environment variable holding the log level.
	LogLevelEnv = "LOG_LEVEL"

	// LogFormatEnv names the environment variable holding the log format
	// (json or text).
	LogFormatEnv = "LOG_FORMAT"

	defaultLogLevel  = "debug"
	defaultLogFormat = "json"
)

// Config is the process-wide configuration. It is read once at cold start and
// never modified afterwards.
type Config struct {
	TableName string
	LogLevel  string
	LogFormat string
}

// LoadConfig reads the configuration from the environment. A missing table
// name is not an error here: the request handlers report it per invocation.
func LoadConfig() Config {
	return Config{
		TableName: os.Getenv(TableNameEnv),
		LogLevel:  envOrDefault(LogLevelEnv, defaultLogLevel),
		LogFormat: envOrDefault(LogFormatEnv, defaultLogFormat),
	}
}

// HasTableName reports whether a table name is configured.
func (c Config) HasTableName() bool {
	return c.TableName != ""
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
