package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maestro/hello-world-dag/internal/domain"
)

func TestCalculateBackoff(t *testing.T) {
	testCases := []struct {
		name     string
		retry    int
		policy   domain.RetryPolicy
		expected time.Duration
	}{
		{
			name:     "fixed",
			retry:    3,
			policy:   domain.RetryPolicy{Delay: 5 * time.Minute},
			expected: 5 * time.Minute,
		},
		{
			name:     "exponential first retry",
			retry:    1,
			policy:   domain.RetryPolicy{Delay: time.Second, Exponential: true},
			expected: time.Second,
		},
		{
			name:     "exponential third retry",
			retry:    3,
			policy:   domain.RetryPolicy{Delay: time.Second, Exponential: true},
			expected: 4 * time.Second,
		},
		{
			name:     "exponential capped",
			retry:    10,
			policy:   domain.RetryPolicy{Delay: time.Second, Exponential: true, MaxDelay: 30 * time.Second},
			expected: 30 * time.Second,
		},
		{
			name:     "cap below base delay",
			retry:    1,
			policy:   domain.RetryPolicy{Delay: time.Minute, Exponential: true, MaxDelay: 10 * time.Second},
			expected: 10 * time.Second,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, calculateBackoff(tc.retry, tc.policy))
		})
	}
}
