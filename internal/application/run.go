package application

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/maestro/hello-world-dag/internal/domain"
)

// runRecord holds the mutable state of a single run. Readers only ever see
// copies taken under mu.
type runRecord struct {
	id       string
	workflow *domain.Workflow
	levels   [][]string
	done     chan struct{}

	mu     sync.Mutex
	result domain.RunResult
	cancel context.CancelFunc
	// cancelled is set when cancelRun is called before the run started.
	cancelled bool
}

func newRunRecord(id string, wf *domain.Workflow, levels [][]string, params map[string]any, now time.Time) *runRecord {
	tasks := make(map[string]*domain.TaskInstance, len(wf.Tasks))
	for _, task := range wf.Tasks {
		tasks[task.ID] = &domain.TaskInstance{
			TaskID: task.ID,
			State:  domain.TaskStateNone,
		}
	}

	return &runRecord{
		id:       id,
		workflow: wf,
		levels:   levels,
		done:     make(chan struct{}),
		result: domain.RunResult{
			RunID:     id,
			DagID:     wf.Name,
			Status:    domain.RunStatusQueued,
			Params:    params,
			Tasks:     tasks,
			StartedAt: now,
		},
	}
}

func (r *runRecord) params() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	return maps.Clone(r.result.Params)
}

func (r *runRecord) start(cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel = cancel
	r.result.Status = domain.RunStatusRunning
	if r.cancelled {
		cancel()
	}
}

func (r *runRecord) cancelRun() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelled = true
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *runRecord) setTask(ti domain.TaskInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.result.Tasks[ti.TaskID] = &ti
}

func (r *runRecord) finish(status domain.RunStatus, err error, now time.Time) *domain.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status != domain.RunStatusSuccess {
		for _, ti := range r.result.Tasks {
			if ti.State == domain.TaskStateNone {
				ti.State = domain.TaskStateUpstreamFailed
			}
		}
	}

	r.result.Status = status
	r.result.Error = err
	r.result.CompletedAt = now

	return r.snapshotLocked()
}

func (r *runRecord) snapshot() *domain.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

func (r *runRecord) snapshotLocked() *domain.RunResult {
	result := r.result
	result.Params = maps.Clone(r.result.Params)
	result.Tasks = make(map[string]*domain.TaskInstance, len(r.result.Tasks))
	for id, ti := range r.result.Tasks {
		cp := *ti
		result.Tasks[id] = &cp
	}
	return &result
}
