package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return err
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s (valid options: text, json)", l.Format)
	}
	return nil
}

// Apply configures logger from the section
func (l *LogConfig) Apply(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
