package logger

import (
	"context"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	appContext "gitlab.apk-group.net/siem/qa/discovery-harness/pkg/context"
)

// ContextLogger provides context-aware logging functionality
type ContextLogger struct {
	*CoreLogger
}

// NewContextLogger creates a new context-aware logger
func NewContextLogger(cfg config.LoggerConfig) (*ContextLogger, error) {
	coreLogger, err := NewCoreLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &ContextLogger{CoreLogger: coreLogger}, nil
}

// FromContext returns the logger stored in the context, enriched with the
// context's trace ID, falling back to the core logger.
func (cl *ContextLogger) FromContext(ctx context.Context) *CoreLogger {
	base := cl.CoreLogger
	if ctxLogger := appContext.GetLogger(ctx); ctxLogger != nil {
		base = &CoreLogger{Logger: ctxLogger, config: cl.config}
	}
	return base.WithTraceID(appContext.GetTraceID(ctx))
}

// SetInContext stores the logger in the context
func (cl *ContextLogger) SetInContext(ctx context.Context, logger *CoreLogger) context.Context {
	appContext.SetLogger(ctx, logger.Logger)
	return ctx
}

// Global instance management

var globalContextLogger *ContextLogger

// InitGlobalLogger initializes the global context logger
func InitGlobalLogger(cfg config.LoggerConfig) error {
	logger, err := NewContextLogger(cfg)
	if err != nil {
		return err
	}
	globalContextLogger = logger
	return nil
}

// GetGlobalLogger returns the global context logger instance
func GetGlobalLogger() *ContextLogger {
	if globalContextLogger == nil {
		logger, err := NewContextLogger(config.LoggerConfig{Level: "info", Output: "stdout"})
		if err != nil {
			panic("Failed to create default logger: " + err.Error())
		}
		globalContextLogger = logger
	}
	return globalContextLogger
}

// FromContext is a convenience function to get logger from context using global instance
func FromContext(ctx context.Context) *CoreLogger {
	return GetGlobalLogger().FromContext(ctx)
}

// DebugContext logs a debug message using context
func DebugContext(ctx context.Context, msg string, args ...interface{}) {
	FromContext(ctx).Debug(msg, args...)
}

// InfoContext logs an info message using context
func InfoContext(ctx context.Context, msg string, args ...interface{}) {
	FromContext(ctx).Info(msg, args...)
}

// WarnContext logs a warning message using context
func WarnContext(ctx context.Context, msg string, args ...interface{}) {
	FromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs an error message using context
func ErrorContext(ctx context.Context, msg string, args ...interface{}) {
	FromContext(ctx).Error(msg, args...)
}

// InfoContextWithFields logs an info message with additional fields using context
func InfoContextWithFields(ctx context.Context, msg string, fields map[string]interface{}) {
	FromContext(ctx).InfoWithFields(msg, fields)
}

// ErrorContextWithFields logs an error message with additional fields using context
func ErrorContextWithFields(ctx context.Context, msg string, fields map[string]interface{}) {
	FromContext(ctx).ErrorWithFields(msg, fields)
}
