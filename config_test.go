package again_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/internal/fake"
	"github.com/teenjuna/again/internal/testing/require"
	"github.com/teenjuna/again/retry"
)

func TestOptions(t *testing.T) {
	require.PanicWithError(t, "policy can't be nil", func() {
		_ = again.New[int](nil)
	})

	require.PanicWithError(t, "sink can't be nil", func() {
		_ = again.WithSink[int](nil)
	})

	require.PanicWithError(t, "logger can't be nil", func() {
		_ = again.WithLogger[int](nil)
	})

	require.PanicWithError(t, "prometheus config can't be nil", func() {
		_ = again.WithPrometheus[int](nil)
	})

	require.PanicWithError(t, "sink can't be nil", func() {
		_ = again.Tee(again.NewTrace(), nil)
	})
}

func TestLogger(t *testing.T) {
	run(t, func(t *testing.T) {
		var (
			buf    = new(bytes.Buffer)
			logger = slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			exec   = again.New(retry.Fixed(2, time.Second), again.WithLogger[int](logger))
		)

		exec.Run(t.Context(), "Goku", fake.NewFlaky(1, 9000).Fetch)
		exec.Run(t.Context(), "Vegeta", fake.Failing[int](fake.ErrTimeout).Fetch)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Equal(t, len(lines), 4)
		require.Contains(t, lines[0], "level=DEBUG")
		require.Contains(t, lines[0], "name=Goku")
		require.Contains(t, lines[1], "level=INFO")
		require.Contains(t, lines[1], `msg="sequence succeeded"`)
		require.Contains(t, lines[2], "name=Vegeta")
		require.Contains(t, lines[3], "level=WARN")
		require.Contains(t, lines[3], `error="scouter timeout"`)
	})
}
