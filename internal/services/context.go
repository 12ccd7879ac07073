package services

import "context"

type contextKey string

const (
	workflowKey contextKey = "workflow"
	recordIDKey contextKey = "record_id"
	runIDKey    contextKey = "run_id"
)

// WithWorkflow annotates context with the workflow identifier (wf01..wf11).
func WithWorkflow(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, workflowKey, id)
}

// WorkflowFromContext returns the workflow identifier if present.
func WorkflowFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(workflowKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRecordID annotates context with the record identifier being processed.
func WithRecordID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, recordIDKey, id)
}

// RecordIDFromContext extracts the record identifier if present.
func RecordIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(recordIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithRunID annotates context with a run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
