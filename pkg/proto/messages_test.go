package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestParseTriggerRequest(t *testing.T) {
	testCases := []struct {
		name     string
		fields   map[string]any
		expected TriggerRequest
		errMsg   string
	}{
		{
			name:     "no params",
			fields:   map[string]any{"workflow": "hello-world-dag"},
			expected: TriggerRequest{Workflow: "hello-world-dag"},
		},
		{
			name:   "params",
			fields: map[string]any{"workflow": "hello-world-dag", "params": map[string]any{"n": 1}},
			expected: TriggerRequest{
				Workflow: "hello-world-dag",
				Params:   map[string]any{"n": float64(1)},
			},
		},
		{
			name:   "missing workflow",
			fields: map[string]any{"params": map[string]any{}},
			errMsg: "workflow is required",
		},
		{
			name:   "params not an object",
			fields: map[string]any{"workflow": "hello-world-dag", "params": "a=b"},
			errMsg: "params must be an object",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := structpb.NewStruct(tc.fields)
			require.NoError(t, err)

			actual, err := ParseTriggerRequest(s)
			if tc.errMsg != "" {
				require.ErrorContains(t, err, tc.errMsg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestRunStatusTryNumber(t *testing.T) {
	s, err := RunStatus{
		RunID:  "r",
		Status: "failed",
		Tasks:  map[string]TaskStatus{"read": {State: "failed", TryNumber: 2, Error: "object not found"}},
	}.ToStruct()
	require.NoError(t, err)

	parsed := ParseRunStatus(s)
	require.Equal(t, TaskStatus{State: "failed", TryNumber: 2, Error: "object not found"}, parsed.Tasks["read"])
	require.Empty(t, parsed.CompletedAt)
}
