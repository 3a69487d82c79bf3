package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maestro/hello-world-dag/internal/domain"
)

func knownOperators(name string) bool {
	return name == "empty" || name == "s3_read_json"
}

func task(id, operator string, upstream ...string) domain.Task {
	return domain.Task{ID: id, Operator: operator, Upstream: upstream}
}

func TestLevels(t *testing.T) {
	testCases := []struct {
		name     string
		tasks    []domain.Task
		expected [][]string
	}{
		{
			name:     "single task",
			tasks:    []domain.Task{task("a", "empty")},
			expected: [][]string{{"a"}},
		},
		{
			name:     "chain",
			tasks:    []domain.Task{task("end", "empty", "read"), task("read", "s3_read_json")},
			expected: [][]string{{"read"}, {"end"}},
		},
		{
			name: "diamond",
			tasks: []domain.Task{
				task("a", "empty"),
				task("c", "empty", "a"),
				task("b", "empty", "a"),
				task("d", "empty", "b", "c"),
			},
			expected: [][]string{{"a"}, {"b", "c"}, {"d"}},
		},
		{
			name: "uneven branches",
			tasks: []domain.Task{
				task("a", "empty"),
				task("b", "empty", "a"),
				task("c", "empty", "b"),
				task("d", "empty", "a", "c"),
			},
			expected: [][]string{{"a"}, {"b"}, {"c"}, {"d"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			levels, err := NewValidator(knownOperators).Levels(&domain.Workflow{Name: "wf", Tasks: tc.tasks})
			require.NoError(t, err)
			require.Equal(t, tc.expected, levels)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	retries := -1

	testCases := []struct {
		name   string
		wf     domain.Workflow
		errMsg string
	}{
		{
			name:   "missing name",
			wf:     domain.Workflow{Tasks: []domain.Task{task("a", "empty")}},
			errMsg: "workflow name is required",
		},
		{
			name:   "no tasks",
			wf:     domain.Workflow{Name: "wf"},
			errMsg: "must have at least one task",
		},
		{
			name:   "duplicate task",
			wf:     domain.Workflow{Name: "wf", Tasks: []domain.Task{task("a", "empty"), task("a", "empty")}},
			errMsg: "duplicate task id: a",
		},
		{
			name:   "unknown upstream",
			wf:     domain.Workflow{Name: "wf", Tasks: []domain.Task{task("a", "empty", "missing")}},
			errMsg: "unknown upstream task missing",
		},
		{
			name:   "self dependency",
			wf:     domain.Workflow{Name: "wf", Tasks: []domain.Task{task("a", "empty", "a")}},
			errMsg: "depends on itself",
		},
		{
			name:   "cycle",
			wf:     domain.Workflow{Name: "wf", Tasks: []domain.Task{task("a", "empty", "b"), task("b", "empty", "a")}},
			errMsg: "cycle detected",
		},
		{
			name:   "unknown operator",
			wf:     domain.Workflow{Name: "wf", Tasks: []domain.Task{task("a", "bash")}},
			errMsg: "unknown operator bash",
		},
		{
			name:   "missing operator",
			wf:     domain.Workflow{Name: "wf", Tasks: []domain.Task{{ID: "a"}}},
			errMsg: "operator is required",
		},
		{
			name: "scheduled",
			wf: domain.Workflow{
				Name:     "wf",
				Schedule: "@daily",
				Tasks:    []domain.Task{task("a", "empty")},
			},
			errMsg: "unsupported schedule",
		},
		{
			name: "negative retries",
			wf: domain.Workflow{
				Name:  "wf",
				Tasks: []domain.Task{{ID: "a", Operator: "empty", Retries: &retries}},
			},
			errMsg: "retries must not be negative",
		},
		{
			name: "bad param type",
			wf: domain.Workflow{
				Name:   "wf",
				Params: map[string]domain.Param{"p": {Type: "object"}},
				Tasks:  []domain.Task{task("a", "empty")},
			},
			errMsg: `invalid type "object"`,
		},
		{
			name: "bad param default",
			wf: domain.Workflow{
				Name:   "wf",
				Params: map[string]domain.Param{"p": {Type: domain.ParamTypeInteger, Default: "ten"}},
				Tasks:  []domain.Task{task("a", "empty")},
			},
			errMsg: "invalid default",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewValidator(knownOperators).Validate(&tc.wf)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestValidateWithoutOperatorLookup(t *testing.T) {
	wf := &domain.Workflow{Name: "wf", Tasks: []domain.Task{task("a", "anything")}}
	require.NoError(t, NewValidator(nil).Validate(wf))
}

func TestDownstream(t *testing.T) {
	wf := &domain.Workflow{
		Name: "wf",
		Tasks: []domain.Task{
			task("a", "empty"),
			task("c", "empty", "a"),
			task("b", "empty", "a"),
			task("d", "empty", "b"),
		},
	}

	require.Equal(t, []string{"b", "c"}, Downstream(wf, "a"))
	require.Equal(t, []string{"d"}, Downstream(wf, "b"))
	require.Empty(t, Downstream(wf, "d"))
}
