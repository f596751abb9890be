// Package logging constructs the process-wide logrus logger from
// configuration. Components receive the logger explicitly through their
// constructors; there is no package-level logger.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logrus logger with the configured level. Development
// environments get human-readable output, everything else JSON.
func New(logLevel, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(parseLevel(logLevel))

	if strings.ToLower(environment) == "development" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
