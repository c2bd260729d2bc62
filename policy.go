package again

import (
	"context"
	"time"
)

// Policy decides how many attempts an [Executor] makes and how long it waits between them.
//
// See the retry package for implementations.
type Policy interface {
	// Attempts returns the total number of attempts, including the first one.
	Attempts() int
	// Backoff returns the wait after the failed attempt number attempt. It's only called for
	// attempts lower than Attempts().
	Backoff(attempt int) time.Duration
}

// Operation is a unit of work that can be invoked repeatedly. Its inputs are captured by the
// closure. Repeating it must be safe.
type Operation[V any] = func(ctx context.Context) (V, error)
