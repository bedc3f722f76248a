// Package logging builds the logrus logger shared by the Lambda handlers and
// the development server.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects the level and format of a logger built by [New].
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New returns a logger for the given options. An unknown level falls back to
// debug and an unknown format falls back to json; both log a warning.
// Output defaults to stdout.
func New(options Options) *logrus.Logger {
	logger := logrus.New()

	output := options.Output
	if output == nil {
		output = os.Stdout
	}
	logger.SetOutput(output)

	var warnings []string

	switch strings.ToLower(options.Format) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
		warnings = append(warnings, "could not parse log format "+options.Format)
	}

	if options.Level == "" {
		logger.SetLevel(logrus.DebugLevel)
	} else if level, err := logrus.ParseLevel(options.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.DebugLevel)
		warnings = append(warnings, "could not parse log level "+options.Level)
	}

	for _, w := range warnings {
		logger.Warn(w)
	}

	return logger
}
