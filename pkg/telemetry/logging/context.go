package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for validation run ids.
	RunIDKey contextKey = "run_id"

	// ContractKey is the context key for contract names.
	ContractKey contextKey = "contract"

	// ModeKey is the context key for validation modes.
	ModeKey contextKey = "mode"
)

// WithRunID adds a validation run id to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// RunID retrieves the validation run id from the context.
func RunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithContract adds a contract name to the context.
func WithContract(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContractKey, name)
}

// Contract retrieves the contract name from the context.
func Contract(ctx context.Context) string {
	if name, ok := ctx.Value(ContractKey).(string); ok {
		return name
	}
	return ""
}

// WithMode adds a validation mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, ModeKey, mode)
}

// Mode retrieves the validation mode from the context.
func Mode(ctx context.Context) string {
	if mode, ok := ctx.Value(ModeKey).(string); ok {
		return mode
	}
	return ""
}

// FromContext returns the logger enriched with any run fields present in
// the context.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if runID := RunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	if name := Contract(ctx); name != "" {
		logger = logger.With("contract", name)
	}
	if mode := Mode(ctx); mode != "" {
		logger = logger.With("mode", mode)
	}
	return logger
}
