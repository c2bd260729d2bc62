package retry

import (
	"math"
	"time"
)

// ExponentialPolicy waits base*factor^(attempt-1) after each failed attempt. There is no jitter,
// so the sequence is exact and reproducible.
type ExponentialPolicy struct {
	attempts    int
	base        time.Duration
	factor      int64
	maxInterval time.Duration
}

var _ Policy = (*ExponentialPolicy)(nil)

// Exponential returns a policy making up to attempts attempts and doubling the wait after each
// failed one, starting at base.
func Exponential(attempts int, base time.Duration) *ExponentialPolicy {
	checkAttempts(attempts)
	if base <= 0 {
		panic("base can't be <= 0")
	}
	return &ExponentialPolicy{
		attempts: attempts,
		base:     base,
		factor:   2,
	}
}

// WithFactor sets the growth factor of the wait. The default is 2.
func (r *ExponentialPolicy) WithFactor(factor int) *ExponentialPolicy {
	if factor < 2 {
		panic("factor can't be < 2")
	}
	r.factor = int64(factor)
	return r
}

// WithMaxInterval caps the wait.
func (r *ExponentialPolicy) WithMaxInterval(maxInterval time.Duration) *ExponentialPolicy {
	if maxInterval < r.base {
		panic("maxInterval can't be < base")
	}
	r.maxInterval = maxInterval
	return r
}

func (r *ExponentialPolicy) Attempts() int {
	return r.attempts
}

func (r *ExponentialPolicy) Backoff(attempt int) time.Duration {
	checkAttempt(attempt)

	limit := r.maxInterval
	if limit == 0 {
		limit = math.MaxInt64
	}

	interval := min(r.base, limit)
	for range attempt - 1 {
		interval = mul(interval, r.factor, limit)
		if interval == limit {
			break
		}
	}
	return interval
}
