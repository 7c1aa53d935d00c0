// Package logging configures the process-wide severity threshold.
// The level is set once at startup from --log-suppress-below and is
// read-only for the lifetime of a run.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Levels are the accepted suppression thresholds, least to most
// restrictive. ALL suppresses every message.
var Levels = []string{"INFO", "WARNING", "ERROR", "ALL"}

// Setup maps a suppression threshold onto the standard logger.
func Setup(level string) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	switch level {
	case "INFO":
		logrus.SetLevel(logrus.InfoLevel)
	case "WARNING":
		logrus.SetLevel(logrus.WarnLevel)
	case "ERROR":
		logrus.SetLevel(logrus.ErrorLevel)
	case "ALL":
		logrus.SetLevel(logrus.FatalLevel)
	default:
		return fmt.Errorf("unknown log level %q (want one of %v)", level, Levels)
	}
	return nil
}
