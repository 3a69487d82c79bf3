package executor

import (
	"context"
	"fmt"

	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/operators"
)

// ExecuteTask runs one task to completion, retrying failed tries according to
// the task's retry policy. The returned instance is never nil.
func (e *Executor) ExecuteTask(
	ctx context.Context,
	task *domain.Task,
	rc *RunContext,
) (*domain.TaskInstance, error) {
	if GetRunID(ctx) == "" {
		ctx = WithRun(ctx, rc.RunID, rc.Workflow.Name)
	}
	ctx = WithTask(ctx, task.ID)

	logger := e.logger.With().
		Str("run_id", GetRunID(ctx)).
		Str("dag_id", GetDagID(ctx)).
		Str("task_id", GetTaskID(ctx)).
		Str("operator", task.Operator).
		Logger()

	ti := &domain.TaskInstance{
		TaskID:    task.ID,
		State:     domain.TaskStateNone,
		StartedAt: e.clock.Now(),
	}

	fail := func(err error) (*domain.TaskInstance, error) {
		ti.State = domain.TaskStateFailed
		ti.Error = err
		ti.EndedAt = e.clock.Now()
		rc.report(ti)
		return ti, err
	}

	resolvedInput, err := e.resolveTaskInput(task, rc)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve task input")
		return fail(fmt.Errorf("failed to resolve input: %w", err))
	}

	policy := task.RetryPolicy(rc.Workflow.DefaultArgs)
	tries := policy.Retries + 1

	var (
		output  any
		execErr error
	)

	for attempt := 1; attempt <= tries; attempt++ {
		if attempt > 1 {
			backoff := calculateBackoff(attempt-1, policy)
			ti.State = domain.TaskStateUpForRetry
			rc.report(ti)

			logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying task after backoff")

			select {
			case <-ctx.Done():
				execErr = fmt.Errorf("retry aborted: %w", ctx.Err())
				logger.Error().Err(execErr).Msg("Task execution failed")
				return fail(execErr)
			case <-e.clock.After(backoff):
			}
		}

		ti.State = domain.TaskStateRunning
		ti.TryNumber = attempt
		rc.report(ti)

		tryLogger := logger.With().Int("try_number", attempt).Logger()
		tryLogger.Info().Msg("Executing task")
		startTime := e.clock.Now()

		output, execErr = e.registry.Invoke(ctx, task.Operator, &operators.TaskContext{
			RunID:     GetRunID(ctx),
			DagID:     GetDagID(ctx),
			TaskID:    task.ID,
			TryNumber: attempt,
			Params:    rc.Params,
			Input:     resolvedInput,
			Logger:    tryLogger,
		})

		if execErr == nil {
			tryLogger.Info().
				Dur("duration", e.clock.Since(startTime)).
				Msg("Task executed successfully")
			break
		}

		if ctx.Err() != nil {
			tryLogger.Error().Err(execErr).Msg("Task execution interrupted")
			return fail(execErr)
		}

		if attempt < tries {
			tryLogger.Warn().
				Err(execErr).
				Msg("Task execution failed, will retry")
		}
	}

	if execErr != nil {
		logger.Error().
			Err(execErr).
			Int("tries", ti.TryNumber).
			Dur("duration", e.clock.Since(ti.StartedAt)).
			Msg("Task execution failed after all retries")
		return fail(execErr)
	}

	ti.State = domain.TaskStateSuccess
	ti.Output = output
	ti.EndedAt = e.clock.Now()
	rc.report(ti)

	return ti, nil
}
