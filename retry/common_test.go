package retry_test

import (
	"testing"
	"time"

	"github.com/teenjuna/again/internal/testing/require"
	"github.com/teenjuna/again/retry"
)

func run(t *testing.T, name string, fn func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		t.Helper()
		t.Parallel()
		fn(t)
	})
}

// sequence returns the waits a policy yields between all of its attempts.
func sequence(p retry.Policy) []time.Duration {
	waits := make([]time.Duration, 0, p.Attempts()-1)
	for attempt := 1; attempt < p.Attempts(); attempt++ {
		waits = append(waits, p.Backoff(attempt))
	}
	return waits
}

func requireSequence(t *testing.T, p retry.Policy, waits ...time.Duration) {
	t.Helper()
	require.Equal(t, sequence(p), append([]time.Duration{}, waits...))
}
