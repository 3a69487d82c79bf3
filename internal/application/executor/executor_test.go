package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	clock_testing "k8s.io/utils/clock/testing"

	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/operators"
)

var errTransient = errors.New("transient")

// flaky fails the first n tries.
type flaky struct {
	n     int32
	calls atomic.Int32
}

func (f *flaky) Execute(context.Context, *operators.TaskContext) (any, error) {
	if f.calls.Add(1) <= f.n {
		return nil, errTransient
	}
	return "ok", nil
}

type recorder struct {
	mu     sync.Mutex
	states []domain.TaskState
}

func (r *recorder) record(ti domain.TaskInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, ti.State)
}

func (r *recorder) all() []domain.TaskState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TaskState(nil), r.states...)
}

func newTestExecutor(t *testing.T, clk *clock_testing.FakeClock, ops map[string]operators.Operator) *Executor {
	t.Helper()

	registry := operators.NewRegistry(operators.BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  100,
		FailureRatio: 1,
	})
	for name, op := range ops {
		require.NoError(t, registry.Register(name, op))
	}

	return NewExecutor(registry, clk, zerolog.Nop())
}

func retryWorkflow(retries int) *domain.Workflow {
	return &domain.Workflow{
		Name: "retry",
		DefaultArgs: domain.DefaultArgs{
			Retries:    retries,
			RetryDelay: domain.NewDuration(5 * time.Minute),
		},
		Tasks: []domain.Task{{ID: "work", Operator: "flaky"}},
	}
}

func TestExecuteTaskRetriesAfterDelay(t *testing.T) {
	clk := clock_testing.NewFakeClock(time.Now())
	op := &flaky{n: 1}
	e := newTestExecutor(t, clk, map[string]operators.Operator{"flaky": op})

	wf := retryWorkflow(1)
	rec := &recorder{}
	rc := &RunContext{RunID: "run-1", Workflow: wf, OnUpdate: rec.record}

	type result struct {
		ti  *domain.TaskInstance
		err error
	}
	done := make(chan result, 1)
	go func() {
		ti, err := e.ExecuteTask(context.Background(), &wf.Tasks[0], rc)
		done <- result{ti, err}
	}()

	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	require.Equal(t, int32(1), op.calls.Load())

	clk.Step(5 * time.Minute)

	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, domain.TaskStateSuccess, res.ti.State)
	require.Equal(t, 2, res.ti.TryNumber)
	require.Equal(t, "ok", res.ti.Output)
	require.Equal(t, []domain.TaskState{
		domain.TaskStateRunning,
		domain.TaskStateUpForRetry,
		domain.TaskStateRunning,
		domain.TaskStateSuccess,
	}, rec.all())
}

func TestExecuteTaskExhaustsRetries(t *testing.T) {
	clk := clock_testing.NewFakeClock(time.Now())
	op := &flaky{n: 10}
	e := newTestExecutor(t, clk, map[string]operators.Operator{"flaky": op})

	wf := retryWorkflow(0)
	ti, err := e.ExecuteTask(context.Background(), &wf.Tasks[0], &RunContext{RunID: "run-1", Workflow: wf})
	require.ErrorIs(t, err, errTransient)
	require.Equal(t, domain.TaskStateFailed, ti.State)
	require.Equal(t, 1, ti.TryNumber)
	require.ErrorIs(t, ti.Error, errTransient)
	require.Equal(t, int32(1), op.calls.Load())
}

func TestExecuteTaskCancelledDuringBackoff(t *testing.T) {
	clk := clock_testing.NewFakeClock(time.Now())
	op := &flaky{n: 10}
	e := newTestExecutor(t, clk, map[string]operators.Operator{"flaky": op})

	wf := retryWorkflow(3)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := e.ExecuteTask(ctx, &wf.Tasks[0], &RunContext{RunID: "run-1", Workflow: wf})
		done <- err
	}()

	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int32(1), op.calls.Load())
}

func TestExecuteTaskContext(t *testing.T) {
	var seen *operators.TaskContext
	var taskID string

	capture := operators.OperatorFunc(func(ctx context.Context, tc *operators.TaskContext) (any, error) {
		seen = tc
		taskID = GetTaskID(ctx)
		return nil, nil
	})

	e := newTestExecutor(t, clock_testing.NewFakeClock(time.Now()), map[string]operators.Operator{"capture": capture})

	wf := &domain.Workflow{
		Name: "templated",
		Tasks: []domain.Task{{
			ID:       "read",
			Operator: "capture",
			Input: map[string]any{
				"bucket": "{{ .params.bucket }}",
				"path":   "{{ .dag_id }}/{{ .run_id }}/{{ .task_id }}",
				"plain":  "as-is",
				"count":  3,
			},
		}},
	}

	ctx := WithRun(context.Background(), "run-7", wf.Name)
	_, err := e.ExecuteTask(ctx, &wf.Tasks[0], &RunContext{
		RunID:    "run-7",
		Workflow: wf,
		Params:   map[string]any{"bucket": "demo-bucket"},
	})
	require.NoError(t, err)

	require.Equal(t, "read", taskID)
	require.Equal(t, "run-7", seen.RunID)
	require.Equal(t, "templated", seen.DagID)
	require.Equal(t, 1, seen.TryNumber)
	require.Equal(t, map[string]any{
		"bucket": "demo-bucket",
		"path":   "templated/run-7/read",
		"plain":  "as-is",
		"count":  3,
	}, seen.Input)
}

func TestExecuteTaskLogsRunFromContext(t *testing.T) {
	var buf bytes.Buffer
	e := newTestExecutor(t, clock_testing.NewFakeClock(time.Now()), map[string]operators.Operator{"flaky": &flaky{}})
	e.logger = zerolog.New(&buf)

	wf := retryWorkflow(0)
	ctx := WithRun(context.Background(), "run-from-ctx", "dag-from-ctx")
	_, err := e.ExecuteTask(ctx, &wf.Tasks[0], &RunContext{RunID: "run-1", Workflow: wf})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &fields))
		require.Equal(t, "run-from-ctx", fields["run_id"])
		require.Equal(t, "dag-from-ctx", fields["dag_id"])
		require.Equal(t, "work", fields["task_id"])
	}
}

func TestExecuteTaskWithoutRunContext(t *testing.T) {
	var seen *operators.TaskContext
	capture := operators.OperatorFunc(func(_ context.Context, tc *operators.TaskContext) (any, error) {
		seen = tc
		return nil, nil
	})
	e := newTestExecutor(t, clock_testing.NewFakeClock(time.Now()), map[string]operators.Operator{"capture": capture})

	wf := &domain.Workflow{Name: "bare", Tasks: []domain.Task{{ID: "t", Operator: "capture"}}}
	_, err := e.ExecuteTask(context.Background(), &wf.Tasks[0], &RunContext{RunID: "run-2", Workflow: wf})
	require.NoError(t, err)
	require.Equal(t, "run-2", seen.RunID)
	require.Equal(t, "bare", seen.DagID)
}

func TestExecuteTaskMissingTemplateParam(t *testing.T) {
	op := &flaky{}
	e := newTestExecutor(t, clock_testing.NewFakeClock(time.Now()), map[string]operators.Operator{"flaky": op})

	wf := &domain.Workflow{
		Name:  "templated",
		Tasks: []domain.Task{{ID: "work", Operator: "flaky", Input: map[string]any{"bucket": "{{ .params.bucket }}"}}},
	}

	ti, err := e.ExecuteTask(context.Background(), &wf.Tasks[0], &RunContext{RunID: "r", Workflow: wf, Params: map[string]any{}})
	require.ErrorContains(t, err, "failed to resolve input")
	require.Equal(t, domain.TaskStateFailed, ti.State)
	require.Equal(t, int32(0), op.calls.Load())
}

func TestExecuteLevel(t *testing.T) {
	ok := operators.OperatorFunc(func(context.Context, *operators.TaskContext) (any, error) {
		return "done", nil
	})
	e := newTestExecutor(t, clock_testing.NewFakeClock(time.Now()), map[string]operators.Operator{
		"ok":    ok,
		"flaky": &flaky{n: 10},
	})

	wf := &domain.Workflow{
		Name: "level",
		Tasks: []domain.Task{
			{ID: "a", Operator: "ok"},
			{ID: "b", Operator: "flaky"},
			{ID: "c", Operator: "ok"},
		},
	}

	results, err := e.ExecuteLevel(context.Background(), []string{"a", "b", "c"}, &RunContext{RunID: "r", Workflow: wf})
	require.ErrorContains(t, err, "task b failed")
	require.Len(t, results, 3)
	require.Equal(t, domain.TaskStateSuccess, results["a"].State)
	require.Equal(t, domain.TaskStateFailed, results["b"].State)
	require.Equal(t, domain.TaskStateSuccess, results["c"].State)

	_, err = e.ExecuteLevel(context.Background(), []string{"missing"}, &RunContext{RunID: "r", Workflow: wf})
	require.ErrorContains(t, err, "task missing not found")
}
