// Package ctxutil carries request-scoped values through a context.Context:
// a run ID identifying one pipeline invocation, threaded into every log line
// and cancellation checkpoint emitted during that run.
package ctxutil

import "context"

type ctxKey string

const runIDKey ctxKey = "run_id"

// WithRunID stores the pipeline run ID in the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromCtx extracts the pipeline run ID from the context.
// Returns an empty string if absent.
func RunIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}
