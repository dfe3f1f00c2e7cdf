// Package logging sets up the application loggers. Structured JSON output
// goes to the optional log file (rotated by lumberjack), human-readable text
// output goes to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	structuredLogger    *slog.Logger
	humanReadableLogger *slog.Logger
	fileSink            *lumberjack.Logger
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Config carries the settings needed to initialize logging. It is a plain
// struct rather than conf.Settings to avoid an import cycle with conf.
type Config struct {
	Debug      bool   // lowers the minimum level to debug
	FilePath   string // structured log destination, empty disables the file sink
	MaxSizeMB  int    // rotation size for the file sink
	MaxBackups int    // rotated files to retain
}

// Init initializes the logging system with structured and human-readable
// loggers and installs the structured logger as the slog default.
func Init(cfg Config) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var structuredOut io.Writer = os.Stdout
	if cfg.FilePath != "" {
		fileSink = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		structuredOut = fileSink
	}

	structuredHandler := slog.NewJSONHandler(structuredOut, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	structuredLogger = slog.New(structuredHandler)

	humanReadableHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	humanReadableLogger = slog.New(humanReadableHandler)

	slog.SetDefault(structuredLogger)
}

// StructuredLogger returns the JSON logger, initializing with defaults if
// Init has not been called yet.
func StructuredLogger() *slog.Logger {
	if structuredLogger == nil {
		Init(Config{})
	}
	return structuredLogger
}

// HumanReadableLogger returns the text logger for console output.
func HumanReadableLogger() *slog.Logger {
	if humanReadableLogger == nil {
		Init(Config{})
	}
	return humanReadableLogger
}

// ForService returns a structured logger annotated with a service name,
// the conventional way for packages to obtain their logger.
func ForService(service string) *slog.Logger {
	return StructuredLogger().With("service", service)
}

// Close flushes and closes the file sink if one was configured.
func Close() error {
	if fileSink != nil {
		return fileSink.Close()
	}
	return nil
}
