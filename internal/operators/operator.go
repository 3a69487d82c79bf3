// Package operators holds the task implementations a workflow can reference
// by name.
package operators

import (
	"context"

	"github.com/rs/zerolog"
)

type Operator interface {
	Execute(ctx context.Context, tc *TaskContext) (any, error)
}

// OperatorFunc adapts a plain function to Operator.
type OperatorFunc func(ctx context.Context, tc *TaskContext) (any, error)

func (f OperatorFunc) Execute(ctx context.Context, tc *TaskContext) (any, error) {
	return f(ctx, tc)
}

// TaskContext is what a single try of a task sees.
type TaskContext struct {
	RunID     string
	DagID     string
	TaskID    string
	TryNumber int
	Params    map[string]any
	Input     map[string]any
	Logger    zerolog.Logger
}

func (tc *TaskContext) String(key string) (string, bool) {
	v, ok := tc.Input[key].(string)
	return v, ok
}
