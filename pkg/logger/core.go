package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
)

// LogLevel represents the available log levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// OutputType represents the output destination type
type OutputType string

const (
	OutputStdout OutputType = "stdout"
	OutputFile   OutputType = "file"
)

// CoreLogger wraps slog with the harness configuration and trace bookkeeping.
type CoreLogger struct {
	*slog.Logger
	config   config.LoggerConfig
	hasTrace bool
}

// NewCoreLogger creates a new core logger instance based on configuration
func NewCoreLogger(cfg config.LoggerConfig) (*CoreLogger, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
	}

	var writer io.Writer
	switch parseOutputType(cfg.Output) {
	case OutputFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path is required when output is set to 'file'")
		}
		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", cfg.Path, err)
		}
		writer = file
	default:
		writer = os.Stdout
	}

	jsonHandler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})

	return &CoreLogger{
		Logger: slog.New(jsonHandler),
		config: cfg,
	}, nil
}

// WithTraceID creates a new logger instance carrying the trace ID. A logger
// that already carries one is returned unchanged.
func (l *CoreLogger) WithTraceID(traceID string) *CoreLogger {
	if traceID == "" || l.hasTrace {
		return l
	}
	return &CoreLogger{
		Logger:   l.Logger.With("trace_id", traceID),
		config:   l.config,
		hasTrace: true,
	}
}

// Debug logs a debug message with printf-style formatting
func (l *CoreLogger) Debug(msg string, args ...interface{}) {
	l.Logger.Debug(fmt.Sprintf(msg, args...))
}

// Info logs an info message with printf-style formatting
func (l *CoreLogger) Info(msg string, args ...interface{}) {
	l.Logger.Info(fmt.Sprintf(msg, args...))
}

// Warn logs a warning message with printf-style formatting
func (l *CoreLogger) Warn(msg string, args ...interface{}) {
	l.Logger.Warn(fmt.Sprintf(msg, args...))
}

// Error logs an error message with printf-style formatting
func (l *CoreLogger) Error(msg string, args ...interface{}) {
	l.Logger.Error(fmt.Sprintf(msg, args...))
}

// Fatal logs an error message and exits the process
func (l *CoreLogger) Fatal(msg string, args ...interface{}) {
	l.Logger.Error(fmt.Sprintf(msg, args...))
	os.Exit(1)
}

// DebugWithFields logs a debug message with additional structured fields
func (l *CoreLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.Logger.Debug(msg, fieldsToArgs(fields)...)
}

// InfoWithFields logs an info message with additional structured fields
func (l *CoreLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.Logger.Info(msg, fieldsToArgs(fields)...)
}

// WarnWithFields logs a warning message with additional structured fields
func (l *CoreLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.Logger.Warn(msg, fieldsToArgs(fields)...)
}

// ErrorWithFields logs an error message with additional structured fields
func (l *CoreLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.Logger.Error(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields map[string]interface{}) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

func parseLogLevel(level string) (slog.Level, error) {
	switch LogLevel(strings.ToLower(level)) {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo, "":
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level")
	}
}

func parseOutputType(output string) OutputType {
	if OutputType(strings.ToLower(output)) == OutputFile {
		return OutputFile
	}
	return OutputStdout
}
