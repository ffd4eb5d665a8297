package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across sdkgen.
const (
	FieldRunID      = "run_id"
	FieldComponent  = "component"
	FieldFile       = "file"
	FieldOutput     = "output"
	FieldClass      = "class"
	FieldFunction   = "function"
	FieldStatus     = "status"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"
)

type contextKey string

const runIDKey contextKey = "logger_run_id"

// WithRunID adds a batch run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the batch run ID carried by ctx, if any
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// LoggerFromContext returns a logger with the run ID from ctx attached.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	if id := RunIDFromContext(ctx); id != "" {
		return Logger.With(FieldRunID, id)
	}
	return Logger
}

// ComponentLogger returns a named logger for a specific component.
//
// Example:
//
//	log := logger.ComponentLogger("pipeline.watch")
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
