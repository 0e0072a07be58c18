// Package logger builds the structured logger used by the CLI and
// handed to the optimization pipeline.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config defines logger construction parameters.
type Config struct {
	Level      string `mapstructure:"level"`       // "debug", "info", "warn", "error"
	FilePath   string `mapstructure:"file_path"`   // empty disables file output
	MaxSize    int    `mapstructure:"max_size"`    // megabytes before rotation
	MaxBackups int    `mapstructure:"max_backups"` // rotated files to retain
	MaxAge     int    `mapstructure:"max_age"`     // days to retain rotated files
	Compress   bool   `mapstructure:"compress"`    // gzip rotated files
	Console    bool   `mapstructure:"console"`     // also log to stderr
}

// DefaultConfig returns console-only info logging.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Console: true,
	}
}

// New returns a logrus.Logger configured per cfg, with rotation for the
// file target and JSON formatting.
func New(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	var writers []io.Writer

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	if cfg.Console || cfg.FilePath == "" {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}

	return log, nil
}
