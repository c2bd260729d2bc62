package retry

import "time"

// LinearPolicy grows the wait by a constant step, from minInterval up to maxInterval.
type LinearPolicy struct {
	attempts    int
	step        time.Duration
	minInterval time.Duration
	maxInterval time.Duration
}

var _ Policy = (*LinearPolicy)(nil)

// Linear returns a policy whose waits grow evenly from minInterval after the first failed attempt
// to maxInterval after the last one that's followed by a retry.
func Linear(attempts int, minInterval, maxInterval time.Duration) *LinearPolicy {
	checkAttempts(attempts)
	if minInterval <= 0 {
		panic("minInterval can't be <= 0")
	}
	if minInterval >= maxInterval {
		panic("minInterval can't be >= maxInterval")
	}

	// With N attempts there are N-1 waits, so N-2 steps between the first and the last one.
	step := minInterval
	if attempts > 2 {
		step = (maxInterval - minInterval) / time.Duration(attempts-2)
	}

	return &LinearPolicy{
		attempts:    attempts,
		minInterval: minInterval,
		maxInterval: maxInterval,
		step:        step,
	}
}

func (r *LinearPolicy) WithStep(step time.Duration) *LinearPolicy {
	if step <= 0 {
		panic("step can't be <= 0")
	}
	r.step = step
	return r
}

func (r *LinearPolicy) Attempts() int {
	return r.attempts
}

func (r *LinearPolicy) Backoff(attempt int) time.Duration {
	checkAttempt(attempt)
	delta := mul(r.step, int64(attempt-1), r.maxInterval-r.minInterval)
	return min(r.minInterval+delta, r.maxInterval)
}
