package retry

import "time"

// CustomPolicy delegates the wait to a function.
type CustomPolicy struct {
	attempts int
	backoff  func(attempt int) time.Duration
}

var _ Policy = (*CustomPolicy)(nil)

// Custom returns a policy making up to attempts attempts and asking backoff for every wait.
// Negative durations returned by backoff are treated as 0.
func Custom(attempts int, backoff func(attempt int) time.Duration) *CustomPolicy {
	checkAttempts(attempts)
	if backoff == nil {
		panic("backoff can't be nil")
	}
	return &CustomPolicy{
		attempts: attempts,
		backoff:  backoff,
	}
}

func (r *CustomPolicy) Attempts() int {
	return r.attempts
}

func (r *CustomPolicy) Backoff(attempt int) time.Duration {
	checkAttempt(attempt)
	return max(r.backoff(attempt), 0)
}
