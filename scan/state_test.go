package scan_test

import (
	"errors"
	"testing"
	"time"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/internal/testing/require"
	"github.com/teenjuna/again/scan"
)

func TestReduce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		state := scan.Start("1", "Goku")
		require.Equal(t, state.Phase, scan.Running)

		state = scan.Reduce(state, again.Record{
			Name:    "Goku",
			Attempt: 1,
			Err:     errors.New("scouter timeout"),
			Wait:    time.Millisecond * 200,
			Retry:   true,
		})
		require.Equal(t, state.Phase, scan.Running)
		require.Equal(t, state.Attempt, 1)

		state = scan.Reduce(state, again.Record{Name: "Goku", Attempt: 2, Value: 9000})
		state = scan.Reduce(state, again.Terminal{
			Name:     "Goku",
			Status:   again.Success,
			Value:    9000,
			Attempts: 2,
			Elapsed:  time.Millisecond * 200,
		})
		require.Equal(t, state.Phase, scan.Success)
		require.True(t, state.Phase.Done())
		require.Equal(t, state.Result, "Goku = 9000")
		require.Equal(t, state.Error, "")
		require.Equal(t, state.Attempt, 2)
		require.Equal(t, state.Lines, []string{
			`attempt=1 name=Goku failed error="scouter timeout" backoff=200ms`,
			"attempt=2 name=Goku ok value=9000",
			"SUCCESS name=Goku value=9000 attempts=2 elapsed=200ms",
		})
	})

	t.Run("failure", func(t *testing.T) {
		state := scan.Reduce(scan.Start("1", "Vegeta"), again.Terminal{
			Name:     "Vegeta",
			Status:   again.Exhausted,
			Err:      errors.New("scouter timeout"),
			Attempts: 3,
		})
		require.Equal(t, state.Phase, scan.Failure)
		require.Equal(t, state.Error, "scouter timeout")
		require.Equal(t, state.Result, "")
	})

	t.Run("cancelled", func(t *testing.T) {
		state := scan.Reduce(scan.Start("1", "Broly"), again.Terminal{
			Name:     "Broly",
			Status:   again.Cancelled,
			Err:      errors.New("scouter timeout"),
			Attempts: 1,
		})
		require.Equal(t, state.Phase, scan.Cancelled)
		require.Equal(t, state.Error, "")
	})

	t.Run("input is untouched", func(t *testing.T) {
		var (
			start = scan.Start("1", "Gohan")
			first = scan.Reduce(start, again.Record{Name: "Gohan", Attempt: 1, Value: 8000})
			a     = scan.Reduce(first, again.Record{Name: "Gohan", Attempt: 2, Value: 1})
			b     = scan.Reduce(first, again.Record{Name: "Gohan", Attempt: 2, Value: 2})
		)
		require.Equal(t, len(start.Lines), 0)
		require.Equal(t, len(first.Lines), 1)
		require.Equal(t, a.Lines[1], "attempt=2 name=Gohan ok value=1")
		require.Equal(t, b.Lines[1], "attempt=2 name=Gohan ok value=2")
	})
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, scan.Idle.String(), "idle")
	require.Equal(t, scan.Running.String(), "running")
	require.Equal(t, scan.Failure.String(), "failure")
	require.Equal(t, scan.Phase(42).String(), "phase(42)")
	require.Equal(t, scan.Running.Done(), false)
}
