package retry

import "time"

// ImmediatePolicy retries without waiting.
type ImmediatePolicy struct {
	attempts int
}

var _ Policy = (*ImmediatePolicy)(nil)

func Immediate(attempts int) *ImmediatePolicy {
	checkAttempts(attempts)
	return &ImmediatePolicy{
		attempts: attempts,
	}
}

func (r *ImmediatePolicy) Attempts() int {
	return r.attempts
}

func (r *ImmediatePolicy) Backoff(attempt int) time.Duration {
	checkAttempt(attempt)
	return 0
}
