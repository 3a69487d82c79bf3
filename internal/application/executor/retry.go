package executor

import (
	"time"

	"github.com/maestro/hello-world-dag/internal/domain"
)

// calculateBackoff returns the wait before retry number n (1-based).
func calculateBackoff(retry int, policy domain.RetryPolicy) time.Duration {
	if !policy.Exponential {
		return policy.Delay
	}

	delay := policy.Delay
	for i := 1; i < retry; i++ {
		if policy.MaxDelay > 0 && delay >= policy.MaxDelay {
			break
		}
		delay *= 2
	}

	if policy.MaxDelay > 0 {
		return min(delay, policy.MaxDelay)
	}
	return delay
}
