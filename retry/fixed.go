package retry

import "time"

// FixedPolicy waits the same interval after every failed attempt.
type FixedPolicy struct {
	attempts int
	interval time.Duration
}

var _ Policy = (*FixedPolicy)(nil)

func Fixed(attempts int, interval time.Duration) *FixedPolicy {
	checkAttempts(attempts)
	if interval < 0 {
		panic("interval can't be < 0")
	}
	return &FixedPolicy{
		attempts: attempts,
		interval: interval,
	}
}

func (r *FixedPolicy) Attempts() int {
	return r.attempts
}

func (r *FixedPolicy) Backoff(attempt int) time.Duration {
	checkAttempt(attempt)
	return r.interval
}
