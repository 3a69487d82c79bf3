package operators

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/infrastructure/objectstore"
)

func TestS3ReadJSON(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("demo-bucket", "input.json", []byte(`{"a": 1}`))
	store.Put("demo-bucket", "list.json", []byte(`[1, "two", null]`))
	store.Put("demo-bucket", "latin1.json", []byte{'"', 0xe9, '"'})
	store.Put("demo-bucket", "broken.json", []byte(`{"a": `))

	testCases := []struct {
		name     string
		input    map[string]any
		expected any
		err      error
		errMsg   string
	}{
		{
			name:     "object",
			input:    map[string]any{"bucket": "demo-bucket", "key": "input.json"},
			expected: map[string]any{"a": float64(1)},
		},
		{
			name:     "array",
			input:    map[string]any{"bucket": "demo-bucket", "key": "list.json"},
			expected: []any{float64(1), "two", nil},
		},
		{
			name:  "missing object",
			input: map[string]any{"bucket": "demo-bucket", "key": "missing.json"},
			err:   domain.ErrObjectNotFound,
		},
		{
			name:  "invalid utf-8",
			input: map[string]any{"bucket": "demo-bucket", "key": "latin1.json"},
			err:   domain.ErrDecode,
		},
		{
			name:  "invalid json",
			input: map[string]any{"bucket": "demo-bucket", "key": "broken.json"},
			err:   domain.ErrParse,
		},
		{
			name:   "missing key input",
			input:  map[string]any{"bucket": "demo-bucket"},
			errMsg: "input key must be a string",
		},
		{
			name:   "bucket not a string",
			input:  map[string]any{"bucket": 7, "key": "input.json"},
			errMsg: "input bucket must be a string",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := NewS3ReadJSON(store).Execute(context.Background(), &TaskContext{
				TaskID: "read-s3-input",
				Input:  tc.input,
				Logger: zerolog.Nop(),
			})

			switch {
			case tc.err != nil:
				require.ErrorIs(t, err, tc.err)
			case tc.errMsg != "":
				require.ErrorContains(t, err, tc.errMsg)
			default:
				require.NoError(t, err)
				require.Equal(t, tc.expected, actual)
			}
		})
	}
}

func TestS3ReadJSONLogs(t *testing.T) {
	store := objectstore.NewMemory()
	store.Put("demo-bucket", "input.json", []byte(`{"a": 1}`))

	var buf bytes.Buffer
	_, err := NewS3ReadJSON(store).Execute(context.Background(), &TaskContext{
		TaskID: "read-s3-input",
		Input:  map[string]any{"bucket": "demo-bucket", "key": "input.json"},
		Logger: zerolog.New(&buf),
	})
	require.NoError(t, err)

	var lines []map[string]any
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}

	require.Len(t, lines, 2)
	require.Equal(t, "Reading S3 object from bucket demo-bucket and key input.json", lines[0]["message"])
	require.Equal(t, "Read S3 object", lines[1]["message"])
	require.Equal(t, map[string]any{"a": float64(1)}, lines[1]["value"])
}
