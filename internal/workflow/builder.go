package workflow

import (
	"fmt"
	"slices"
	"time"

	"github.com/maestro/hello-world-dag/internal/domain"
)

// Builder declares a workflow in code. Errors are collected and reported by
// Build so declarations read as a single chain.
type Builder struct {
	wf   domain.Workflow
	errs []error
}

func New(name string) *Builder {
	return &Builder{
		wf: domain.Workflow{
			Name:   name,
			Params: make(map[string]domain.Param),
		},
	}
}

func (b *Builder) Description(description string) *Builder {
	b.wf.Description = description
	return b
}

func (b *Builder) Tags(tags ...string) *Builder {
	b.wf.Tags = append(b.wf.Tags, tags...)
	return b
}

func (b *Builder) DefaultArgs(args domain.DefaultArgs) *Builder {
	b.wf.DefaultArgs = args
	return b
}

func (b *Builder) RunTimeout(d time.Duration) *Builder {
	b.wf.RunTimeout = domain.NewDuration(d)
	return b
}

func (b *Builder) PausedUponCreation(paused bool) *Builder {
	b.wf.PausedUponCreation = paused
	return b
}

func (b *Builder) Param(name string, param domain.Param) *Builder {
	if _, exists := b.wf.Params[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate param: %s", name))
		return b
	}
	b.wf.Params[name] = param
	return b
}

// Task adds a task running the named operator with the given input. String
// input values of the form "{{ ... }}" are resolved at run time.
func (b *Builder) Task(id, operator string, input map[string]any) *Builder {
	b.wf.Tasks = append(b.wf.Tasks, domain.Task{
		ID:       id,
		Operator: operator,
		Input:    input,
	})
	return b
}

// Chain adds an edge between each consecutive pair of task ids, so
// Chain("a", "b", "c") declares a >> b >> c.
func (b *Builder) Chain(ids ...string) *Builder {
	for i := 1; i < len(ids); i++ {
		up, down := ids[i-1], ids[i]
		task, ok := b.wf.Task(down)
		if !ok {
			b.errs = append(b.errs, fmt.Errorf("chain: unknown task %s", down))
			continue
		}
		if _, ok := b.wf.Task(up); !ok {
			b.errs = append(b.errs, fmt.Errorf("chain: unknown task %s", up))
			continue
		}
		if !slices.Contains(task.Upstream, up) {
			task.Upstream = append(task.Upstream, up)
		}
	}
	return b
}

func (b *Builder) Build(operators OperatorLookup) (*domain.Workflow, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("workflow %s: %w", b.wf.Name, b.errs[0])
	}

	wf := b.wf
	if err := NewValidator(operators).Validate(&wf); err != nil {
		return nil, err
	}

	return &wf, nil
}
