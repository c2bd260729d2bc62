// This package contains the main [Policy] interface and several implementations.
package retry

import "time"

// Policy defines how many attempts an executor makes and how long it waits between them.
//
// Implementations are pure: they hold no per-run state and can be shared between executors and
// goroutines.
type Policy interface {
	// Attempts returns the total number of attempts, including the first one. It's always >= 1.
	Attempts() int
	// Backoff returns the duration to wait after the failed attempt number attempt (1-indexed)
	// before making the next one.
	//
	// It's only called for attempts lower than Attempts() and never returns a negative duration.
	Backoff(attempt int) time.Duration
}
