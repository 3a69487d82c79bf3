package workflow

import (
	"fmt"
	"sort"

	"github.com/maestro/hello-world-dag/internal/domain"
)

// OperatorLookup reports whether an operator with the given name exists.
type OperatorLookup func(name string) bool

type Validator struct {
	operators OperatorLookup
}

func NewValidator(operators OperatorLookup) *Validator {
	return &Validator{operators: operators}
}

func (v *Validator) Validate(wf *domain.Workflow) error {
	if wf.Name == "" {
		return fmt.Errorf("workflow name is required")
	}

	if wf.Schedule != "" && wf.Schedule != "@once" && wf.Schedule != "none" {
		return fmt.Errorf("workflow %s: unsupported schedule %q (only manually triggered runs are supported)", wf.Name, wf.Schedule)
	}

	if wf.RunTimeout.Duration < 0 {
		return fmt.Errorf("workflow %s: run timeout must not be negative", wf.Name)
	}

	if wf.DefaultArgs.Retries < 0 {
		return fmt.Errorf("workflow %s: retries must not be negative", wf.Name)
	}

	if wf.DefaultArgs.RetryDelay.Duration < 0 {
		return fmt.Errorf("workflow %s: retry delay must not be negative", wf.Name)
	}

	for name, param := range wf.Params {
		if err := v.validateParam(name, param); err != nil {
			return fmt.Errorf("workflow %s: %w", wf.Name, err)
		}
	}

	if len(wf.Tasks) == 0 {
		return fmt.Errorf("workflow %s must have at least one task", wf.Name)
	}

	for i := range wf.Tasks {
		if err := v.validateTask(&wf.Tasks[i]); err != nil {
			return fmt.Errorf("workflow %s: %w", wf.Name, err)
		}
	}

	if _, err := v.Levels(wf); err != nil {
		return fmt.Errorf("workflow %s: %w", wf.Name, err)
	}

	return nil
}

func (v *Validator) validateParam(name string, p domain.Param) error {
	if name == "" {
		return fmt.Errorf("param name is required")
	}

	switch p.Type {
	case domain.ParamTypeString, domain.ParamTypeInteger, domain.ParamTypeNumber, domain.ParamTypeBoolean:
	default:
		return fmt.Errorf("param %s: invalid type %q", name, p.Type)
	}

	if p.Default != nil {
		if _, err := coerceParam(p.Type, p.Default); err != nil {
			return fmt.Errorf("param %s: invalid default: %w", name, err)
		}
	}

	return nil
}

func (v *Validator) validateTask(t *domain.Task) error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}

	if t.Operator == "" {
		return fmt.Errorf("task %s: operator is required", t.ID)
	}

	if v.operators != nil && !v.operators(t.Operator) {
		return fmt.Errorf("task %s: unknown operator %s", t.ID, t.Operator)
	}

	if t.Retries != nil && *t.Retries < 0 {
		return fmt.Errorf("task %s: retries must not be negative", t.ID)
	}

	if t.RetryDelay != nil && t.RetryDelay.Duration < 0 {
		return fmt.Errorf("task %s: retry delay must not be negative", t.ID)
	}

	return nil
}

// Levels groups task ids so that every task's upstreams sit in an earlier
// level. Ids inside a level are sorted.
func (v *Validator) Levels(wf *domain.Workflow) ([][]string, error) {
	dependencies := make(map[string][]string, len(wf.Tasks))
	for _, task := range wf.Tasks {
		if _, exists := dependencies[task.ID]; exists {
			return nil, fmt.Errorf("duplicate task id: %s", task.ID)
		}
		dependencies[task.ID] = append([]string(nil), task.Upstream...)
	}

	for id, upstream := range dependencies {
		for _, ref := range upstream {
			if ref == id {
				return nil, fmt.Errorf("task %s depends on itself", id)
			}
			if _, ok := dependencies[ref]; !ok {
				return nil, fmt.Errorf("task %s: unknown upstream task %s", id, ref)
			}
		}
	}

	if err := v.detectCycles(dependencies); err != nil {
		return nil, fmt.Errorf("workflow contains cycles: %w", err)
	}

	level := make(map[string]int, len(dependencies))
	var depth func(id string) int
	depth = func(id string) int {
		if l, ok := level[id]; ok {
			return l
		}
		l := 0
		for _, ref := range dependencies[id] {
			l = max(l, depth(ref)+1)
		}
		level[id] = l
		return l
	}

	var levels [][]string
	for id := range dependencies {
		l := depth(id)
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], id)
	}

	for _, ids := range levels {
		sort.Strings(ids)
	}

	return levels, nil
}

func (v *Validator) detectCycles(dependencies map[string][]string) error {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	nodes := make([]string, 0, len(dependencies))
	for node := range dependencies {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		if !visited[node] {
			if v.hasCycleDFS(node, dependencies, visited, recStack) {
				return fmt.Errorf("cycle detected involving task: %s", node)
			}
		}
	}

	return nil
}

func (v *Validator) hasCycleDFS(node string, deps map[string][]string, visited, recStack map[string]bool) bool {
	visited[node] = true
	recStack[node] = true

	for _, neighbor := range deps[node] {
		if !visited[neighbor] {
			if v.hasCycleDFS(neighbor, deps, visited, recStack) {
				return true
			}
		} else if recStack[neighbor] {
			return true
		}
	}

	recStack[node] = false
	return false
}

// Downstream returns the ids of tasks that directly depend on id.
func Downstream(wf *domain.Workflow, id string) []string {
	var out []string
	for _, task := range wf.Tasks {
		for _, ref := range task.Upstream {
			if ref == id {
				out = append(out, task.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
