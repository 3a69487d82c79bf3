package application

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/maestro/hello-world-dag/internal/domain"
)

// runDeadline enforces the run timeout. The budget only runs down while at
// least one task is executing a try; time waiting between retries, and between
// levels, is not counted.
type runDeadline struct {
	clock  clock.Clock
	cancel context.CancelCauseFunc
	cause  error

	mu        sync.Mutex
	remaining time.Duration
	running   map[string]struct{}
	since     time.Time
	timer     clock.Timer
	stop      chan struct{}
}

func newRunDeadline(clk clock.Clock, timeout time.Duration, cancel context.CancelCauseFunc, cause error) *runDeadline {
	return &runDeadline{
		clock:     clk,
		cancel:    cancel,
		cause:     cause,
		remaining: timeout,
		running:   make(map[string]struct{}),
	}
}

// observe tracks which tasks are executing from their state changes.
func (d *runDeadline) observe(ti domain.TaskInstance) {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := len(d.running)
	if ti.State == domain.TaskStateRunning {
		d.running[ti.TaskID] = struct{}{}
	} else {
		delete(d.running, ti.TaskID)
	}

	switch after := len(d.running); {
	case before == 0 && after > 0:
		d.resumeLocked()
	case before > 0 && after == 0:
		d.pauseLocked()
	}
}

// close stops the timer. The deadline must not be used afterwards.
func (d *runDeadline) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.pauseLocked()
	}
}

func (d *runDeadline) resumeLocked() {
	if d.remaining <= 0 {
		d.cancel(d.cause)
		return
	}

	d.since = d.clock.Now()
	timer := d.clock.NewTimer(d.remaining)
	stop := make(chan struct{})
	d.timer, d.stop = timer, stop

	go func() {
		select {
		case <-timer.C():
			d.cancel(d.cause)
		case <-stop:
		}
	}()
}

func (d *runDeadline) pauseLocked() {
	if d.timer == nil {
		return
	}

	d.timer.Stop()
	close(d.stop)
	d.timer, d.stop = nil, nil

	d.remaining -= d.clock.Since(d.since)
	if d.remaining <= 0 {
		d.cancel(d.cause)
	}
}
