package retry_test

import (
	"testing"
	"time"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/internal/testing/require"
	"github.com/teenjuna/again/retry"
)

var _ again.Policy = (*retry.LinearPolicy)(nil)

func TestLinear(t *testing.T) {
	run(t, "With finite attempts", func(t *testing.T) {
		p := retry.Linear(5, time.Second, time.Minute)
		require.NotNil(t, p)
		require.Equal(t, p.Attempts(), 5)
	})

	run(t, "With invalid attempts", func(t *testing.T) {
		require.PanicWithError(t, "attempts can't be < 1", func() {
			_ = retry.Linear(0, time.Second, time.Minute)
		})
	})

	run(t, "With invalid interval", func(t *testing.T) {
		require.PanicWithError(t, "minInterval can't be <= 0", func() {
			_ = retry.Linear(2, 0, time.Minute)
		})
		require.PanicWithError(t, "minInterval can't be >= maxInterval", func() {
			_ = retry.Linear(2, time.Second, time.Second)
		})
	})

	run(t, "With invalid step", func(t *testing.T) {
		require.PanicWithError(t, "step can't be <= 0", func() {
			_ = retry.Linear(2, time.Second, time.Minute).WithStep(0)
		})
	})
}

func TestLinearBackoff(t *testing.T) {
	run(t, "Evenly spread", func(t *testing.T) {
		p := retry.Linear(5, time.Second, time.Second*4)
		requireSequence(t, p, time.Second, time.Second*2, time.Second*3, time.Second*4)
	})

	run(t, "Custom step is capped", func(t *testing.T) {
		p := retry.Linear(6, time.Second, time.Second*3).WithStep(time.Second)
		requireSequence(t, p,
			time.Second,
			time.Second*2,
			time.Second*3,
			time.Second*3,
			time.Second*3,
		)
	})

	run(t, "Two attempts", func(t *testing.T) {
		requireSequence(t, retry.Linear(2, time.Second, time.Minute), time.Second)
	})
}
