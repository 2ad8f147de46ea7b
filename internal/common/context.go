package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID      contextKey = "run_id"
	ContextKeySourceName contextKey = "source_name"
)

// WithRunID adds a pipeline run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the pipeline run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithSourceName adds the source label to the context
func WithSourceName(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ContextKeySourceName, source)
}

// SourceNameFromContext extracts the source label from context
func SourceNameFromContext(ctx context.Context) string {
	if source, ok := ctx.Value(ContextKeySourceName).(string); ok {
		return source
	}
	return ""
}
