package executor

import (
	"context"

	ctxkeys "github.com/maestro/hello-world-dag/internal/context"
)

func WithRun(ctx context.Context, runID, dagID string) context.Context {
	ctx = context.WithValue(ctx, ctxkeys.RunID, runID)
	return context.WithValue(ctx, ctxkeys.DagID, dagID)
}

func WithTask(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, ctxkeys.TaskID, taskID)
}

func GetRunID(ctx context.Context) string {
	if val, ok := ctx.Value(ctxkeys.RunID).(string); ok {
		return val
	}
	return ""
}

func GetDagID(ctx context.Context) string {
	if val, ok := ctx.Value(ctxkeys.DagID).(string); ok {
		return val
	}
	return ""
}

func GetTaskID(ctx context.Context) string {
	if val, ok := ctx.Value(ctxkeys.TaskID).(string); ok {
		return val
	}
	return ""
}
