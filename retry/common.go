package retry

import (
	"math"
	"time"
)

func checkAttempts(attempts int) {
	if attempts < 1 {
		panic("attempts can't be < 1")
	}
}

func checkAttempt(attempt int) {
	if attempt < 1 {
		panic("attempt can't be < 1")
	}
}

// mul returns d*n, saturating at limit (or at the largest duration if limit is 0).
func mul(d time.Duration, n int64, limit time.Duration) time.Duration {
	if limit <= 0 {
		limit = math.MaxInt64
	}
	if d == 0 || n == 0 {
		return 0
	}
	if d > limit/time.Duration(n) {
		return limit
	}
	return d * time.Duration(n)
}
