package executor

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/maestro/hello-world-dag/internal/domain"
)

// ExecuteLevel runs tasks that have no dependencies on each other. A failing
// task does not cancel its siblings; the first failure is returned once all of
// them have finished.
func (e *Executor) ExecuteLevel(
	ctx context.Context,
	taskIDs []string,
	rc *RunContext,
) (map[string]*domain.TaskInstance, error) {
	var g errgroup.Group
	g.SetLimit(e.parallelism)

	results := make(map[string]*domain.TaskInstance, len(taskIDs))
	var mu sync.Mutex

	tasks := make([]*domain.Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		task, ok := rc.Workflow.Task(id)
		if !ok {
			return results, fmt.Errorf("task %s not found", id)
		}
		tasks = append(tasks, task)
	}

	for _, task := range tasks {
		g.Go(func() error {
			ti, err := e.ExecuteTask(ctx, task, rc)

			mu.Lock()
			results[task.ID] = ti
			mu.Unlock()

			if err != nil {
				return fmt.Errorf("task %s failed: %w", task.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	return results, nil
}
