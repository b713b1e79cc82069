package context

import (
	"context"
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

func init() {
	defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// SetDefaultLogger allows setting a configured default logger
func SetDefaultLogger(logger *slog.Logger) {
	defaultLogger = logger
}

type ctxKey string

const traceIDKey ctxKey = "trace_id"

type appContext struct {
	context.Context
	logger *slog.Logger
}

type AppContextOpt func(*appContext) *appContext // option pattern

func WithLogger(logger *slog.Logger) AppContextOpt {
	return func(ac *appContext) *appContext {
		ac.logger = logger
		return ac
	}
}

func NewAppContext(parent context.Context, opts ...AppContextOpt) context.Context {
	ctx := &appContext{Context: parent}
	for _, opt := range opts {
		ctx = opt(ctx)
	}

	return ctx
}

func NewAppContextWithTracing(parent context.Context, traceID string, opts ...AppContextOpt) context.Context {
	parentWithTrace := context.WithValue(parent, traceIDKey, traceID)

	ctx := &appContext{Context: parentWithTrace}
	for _, opt := range opts {
		ctx = opt(ctx)
	}

	return ctx
}

func SetLogger(ctx context.Context, logger *slog.Logger) {
	if appCtx, ok := ctx.(*appContext); ok {
		appCtx.logger = logger
	}
}

func GetLogger(ctx context.Context) *slog.Logger {
	appCtx, ok := ctx.(*appContext)
	if !ok || appCtx.logger == nil {
		return defaultLogger
	}

	return appCtx.logger
}

func GetTraceID(ctx context.Context) string {
	if traceID := ctx.Value(traceIDKey); traceID != nil {
		if tid, ok := traceID.(string); ok {
			return tid
		}
	}
	return ""
}
