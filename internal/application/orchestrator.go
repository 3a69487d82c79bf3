package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"github.com/maestro/hello-world-dag/internal/application/executor"
	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/operators"
	"github.com/maestro/hello-world-dag/internal/ports"
	"github.com/maestro/hello-world-dag/internal/workflow"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrWorkflowExists   = errors.New("workflow already registered")
	ErrRunNotFound      = errors.New("run not found")
	ErrTaskFailed       = errors.New("task execution failed")
	ErrRunTimedOut      = errors.New("run timed out")
)

var _ ports.WorkflowExecutor = (*Orchestrator)(nil)

type Orchestrator struct {
	mu        sync.RWMutex
	workflows map[string]*domain.Workflow
	levels    map[string][][]string
	parser    ports.WorkflowParser
	validator *workflow.Validator
	executor  *executor.Executor
	clock     clock.Clock
	logger    zerolog.Logger
	runs      sync.Map
}

type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock replaces the clock used for timestamps and retry delays.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func New(registry *operators.Registry, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := options{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	return &Orchestrator{
		workflows: make(map[string]*domain.Workflow),
		levels:    make(map[string][][]string),
		parser:    workflow.NewParser(registry.Has),
		validator: workflow.NewValidator(registry.Has),
		executor:  executor.NewExecutor(registry, o.clock, logger),
		clock:     o.clock,
		logger:    logger,
	}
}

func (o *Orchestrator) Register(wf *domain.Workflow) error {
	if err := o.validator.Validate(wf); err != nil {
		return fmt.Errorf("failed to register workflow: %w", err)
	}

	levels, err := o.validator.Levels(wf)
	if err != nil {
		return fmt.Errorf("failed to register workflow: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.workflows[wf.Name]; exists {
		return fmt.Errorf("%w: %s", ErrWorkflowExists, wf.Name)
	}

	o.workflows[wf.Name] = wf
	o.levels[wf.Name] = levels

	logger := o.logger.With().Str("dag_id", wf.Name).Logger()
	if wf.DefaultArgs.EmailOnFailure || wf.DefaultArgs.EmailOnRetry {
		logger.Warn().Msg("Email notifications are not supported and will not be sent")
	}
	if wf.DefaultArgs.DependsOnPast {
		logger.Warn().Msg("depends_on_past has no effect on manually triggered runs")
	}

	logger.Info().
		Int("tasks", len(wf.Tasks)).
		Int("params", len(wf.Params)).
		Bool("paused", wf.PausedUponCreation).
		Msg("Workflow registered")

	return nil
}

func (o *Orchestrator) LoadWorkflow(filename string) (*domain.Workflow, error) {
	wf, err := o.parser.ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	if err := o.Register(wf); err != nil {
		return nil, err
	}

	return wf, nil
}

func (o *Orchestrator) GetWorkflow(name string) (*domain.Workflow, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	wf, ok := o.workflows[name]
	return wf, ok
}

func (o *Orchestrator) ListWorkflows() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	names := make([]string, 0, len(o.workflows))
	for name := range o.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteWorkflow runs the named workflow once and blocks until it finishes.
// The returned result is non-nil whenever the run was started.
func (o *Orchestrator) ExecuteWorkflow(
	ctx context.Context,
	name string,
	params map[string]any,
) (*domain.RunResult, error) {
	rec, err := o.prepare(name, params)
	if err != nil {
		return nil, err
	}

	runErr := o.run(ctx, rec)
	return rec.snapshot(), runErr
}

// TriggerWorkflow starts a run in the background and returns its id. The run
// is bound to ctx, not to the caller that triggered it.
func (o *Orchestrator) TriggerWorkflow(
	ctx context.Context,
	name string,
	params map[string]any,
) (string, error) {
	rec, err := o.prepare(name, params)
	if err != nil {
		return "", err
	}

	go func() {
		_ = o.run(ctx, rec)
	}()

	return rec.id, nil
}

func (o *Orchestrator) GetRun(runID string) (*domain.RunResult, bool) {
	if val, ok := o.runs.Load(runID); ok {
		return val.(*runRecord).snapshot(), true
	}
	return nil, false
}

func (o *Orchestrator) ListRuns() []*domain.RunResult {
	var results []*domain.RunResult
	o.runs.Range(func(_, val any) bool {
		results = append(results, val.(*runRecord).snapshot())
		return true
	})

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.Before(results[j].StartedAt)
	})
	return results
}

// WaitRun blocks until the run finishes or ctx is done.
func (o *Orchestrator) WaitRun(ctx context.Context, runID string) (*domain.RunResult, error) {
	val, ok := o.runs.Load(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec := val.(*runRecord)

	select {
	case <-rec.done:
		return rec.snapshot(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (o *Orchestrator) CancelRun(runID string) error {
	val, ok := o.runs.Load(runID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	val.(*runRecord).cancelRun()
	return nil
}

func (o *Orchestrator) prepare(name string, params map[string]any) (*runRecord, error) {
	o.mu.RLock()
	wf, exists := o.workflows[name]
	levels := o.levels[name]
	o.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, name)
	}

	resolved, err := workflow.ResolveParams(wf, params)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", name, err)
	}

	rec := newRunRecord(uuid.New().String(), wf, levels, resolved, o.clock.Now())
	o.runs.Store(rec.id, rec)

	return rec, nil
}

func (o *Orchestrator) run(ctx context.Context, rec *runRecord) error {
	defer close(rec.done)

	wf := rec.workflow
	logger := o.logger.With().
		Str("run_id", rec.id).
		Str("dag_id", wf.Name).
		Logger()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	rec.start(func() { cancel(context.Canceled) })

	ctx = executor.WithRun(ctx, rec.id, wf.Name)

	params := rec.params()
	logger.Info().
		Interface("params", params).
		Msg("Starting workflow run")

	onUpdate := rec.setTask
	if wf.RunTimeout.Duration > 0 {
		deadline := newRunDeadline(o.clock, wf.RunTimeout.Duration, cancel, ErrRunTimedOut)
		defer deadline.close()

		onUpdate = func(ti domain.TaskInstance) {
			deadline.observe(ti)
			rec.setTask(ti)
		}
	}

	rc := &executor.RunContext{
		RunID:    rec.id,
		Workflow: wf,
		Params:   params,
		OnUpdate: onUpdate,
	}

	var runErr error
	for _, level := range rec.levels {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if _, err := o.executor.ExecuteLevel(ctx, level, rc); err != nil {
			runErr = err
			break
		}
	}

	status := domain.RunStatusSuccess
	cause := context.Cause(ctx)
	switch {
	case runErr == nil:
	case errors.Is(cause, ErrRunTimedOut), errors.Is(cause, context.DeadlineExceeded):
		status = domain.RunStatusFailed
		runErr = fmt.Errorf("%w after %s (%w): %w", ErrRunTimedOut, wf.RunTimeout.Duration, context.DeadlineExceeded, runErr)
	case errors.Is(cause, context.Canceled):
		status = domain.RunStatusCancelled
	default:
		status = domain.RunStatusFailed
		runErr = fmt.Errorf("%w: %w", ErrTaskFailed, runErr)
	}

	result := rec.finish(status, runErr, o.clock.Now())

	event := logger.Info()
	if runErr != nil {
		event = logger.Error().Err(runErr)
	}
	event.
		Str("status", result.Status.String()).
		Dur("duration", result.CompletedAt.Sub(result.StartedAt)).
		Msg("Workflow run completed")

	return runErr
}
