package operators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/maestro/hello-world-dag/internal/domain"
)

type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     10 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

type Registry struct {
	mu        sync.RWMutex
	operators map[string]*entry
	settings  BreakerSettings
}

type entry struct {
	operator Operator
	breaker  *gobreaker.CircuitBreaker
	healthy  atomic.Bool
}

func NewRegistry(settings BreakerSettings) *Registry {
	return &Registry{
		operators: make(map[string]*entry),
		settings:  settings,
	}
}

func (r *Registry) Register(name string, op Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("operator name is required")
	}

	if _, exists := r.operators[name]; exists {
		return fmt.Errorf("operator %s already registered", name)
	}

	e := &entry{operator: op}
	e.healthy.Store(true)

	settings := r.settings
	e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         fmt.Sprintf("%s_circuit_breaker", name),
		MaxRequests:  settings.MaxRequests,
		Interval:     settings.Interval,
		Timeout:      settings.Timeout,
		IsSuccessful: countsAsSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(_ string, _ gobreaker.State, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				e.healthy.Store(false)
			case gobreaker.StateClosed:
				e.healthy.Store(true)
			}
		},
	})

	r.operators[name] = e
	return nil
}

// countsAsSuccess keeps task-level failures out of the breaker counts. Only
// errors reaching the backing service trip it.
func countsAsSuccess(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, domain.ErrObjectNotFound),
		errors.Is(err, domain.ErrDecode),
		errors.Is(err, domain.ErrParse),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}

// Invoke runs the named operator through its circuit breaker.
func (r *Registry) Invoke(ctx context.Context, name string, tc *TaskContext) (any, error) {
	r.mu.RLock()
	e, exists := r.operators[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("operator %s not found", name)
	}

	return e.breaker.Execute(func() (any, error) {
		return e.operator.Execute(ctx, tc)
	})
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.operators[name]
	return exists
}

func (r *Registry) IsHealthy(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, exists := r.operators[name]; exists {
		return e.healthy.Load()
	}

	return false
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.operators))
	for name := range r.operators {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
