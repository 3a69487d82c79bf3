package operators

import "context"

const EmptyOperatorName = "empty"

// Empty does nothing. It marks the point a branch of the graph is complete.
type Empty struct{}

func (Empty) Execute(_ context.Context, tc *TaskContext) (any, error) {
	tc.Logger.Debug().Msg("Reached empty task")
	return nil, nil
}
