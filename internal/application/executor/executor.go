package executor

import (
	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/operators"
)

const defaultParallelism = 10

type Executor struct {
	registry    *operators.Registry
	clock       clock.Clock
	logger      zerolog.Logger
	parallelism int
}

func NewExecutor(registry *operators.Registry, clk clock.Clock, logger zerolog.Logger) *Executor {
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &Executor{
		registry:    registry,
		clock:       clk,
		logger:      logger,
		parallelism: defaultParallelism,
	}
}

// RunContext is the state shared by every task of one run.
type RunContext struct {
	RunID    string
	Workflow *domain.Workflow
	Params   map[string]any

	// OnUpdate, if set, receives a copy of a task instance on every state
	// change. It may be called concurrently for tasks of the same level.
	OnUpdate func(domain.TaskInstance)
}

func (rc *RunContext) report(ti *domain.TaskInstance) {
	if rc.OnUpdate != nil {
		rc.OnUpdate(*ti)
	}
}
