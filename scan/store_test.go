package scan_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/internal/fake"
	"github.com/teenjuna/again/internal/testing/require"
	"github.com/teenjuna/again/retry"
	"github.com/teenjuna/again/scan"
)

func TestStore(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var (
			store  = scan.NewStore()
			phases []scan.Phase
		)
		store.Subscribe(func(s scan.State) {
			phases = append(phases, s.Phase)
		})
		require.Equal(t, store.State().Phase, scan.Idle)

		// Events are ignored until a scan starts.
		store.Append(again.Record{Name: "Goku", Attempt: 1})
		require.Equal(t, len(phases), 0)

		store.Reset("scan-1", "Goku")
		exec := again.New(retry.Exponential(3, time.Millisecond*200), again.WithSink[int](store))
		flaky := fake.NewFlaky(1, 9000)
		outcome := exec.Run(t.Context(), "Goku", flaky.Fetch)
		require.Equal(t, outcome.Status, again.Success)

		state := store.State()
		require.Equal(t, state.ID, "scan-1")
		require.Equal(t, state.Phase, scan.Success)
		require.Equal(t, state.Result, "Goku = 9000")
		require.Equal(t, len(state.Lines), 3)
		require.Equal(t, phases, []scan.Phase{
			scan.Running, scan.Running, scan.Running, scan.Success,
		})
	})
}

func TestStoreIgnoresOtherSequences(t *testing.T) {
	store := scan.NewStore()
	store.Reset("scan-1", "Goku")
	store.Append(again.Record{Name: "Vegeta", Attempt: 1})
	store.Append(again.Terminal{Name: "Vegeta", Status: again.Success, Value: 8500})

	state := store.State()
	require.Equal(t, state.Phase, scan.Running)
	require.Equal(t, len(state.Lines), 0)
}

func TestStoreReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		store := scan.NewStore()
		store.Reset("scan-1", "Broly")

		ctx, cancel := context.WithCancel(t.Context())
		go func() {
			time.Sleep(time.Minute)
			cancel()
		}()

		exec := again.New(retry.Fixed(3, time.Hour), again.WithSink[int](store))
		failing := fake.Failing[int](errors.New("scouter timeout"))
		outcome := exec.Run(ctx, "Broly", failing.Fetch)
		require.Equal(t, outcome.Status, again.Cancelled)
		require.Equal(t, store.State().Phase, scan.Cancelled)

		store.Reset("scan-2", "Broly")
		state := store.State()
		require.Equal(t, state.ID, "scan-2")
		require.Equal(t, state.Phase, scan.Running)
		require.Equal(t, len(state.Lines), 0)
	})
}

func TestStoreSubscribePanics(t *testing.T) {
	require.PanicWithError(t, "subscriber can't be nil", func() {
		scan.NewStore().Subscribe(nil)
	})
}
