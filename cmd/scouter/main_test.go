package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"testing"
	"testing/synctest"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/internal/testing/require"
)

func TestRetryStub(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out, err := execute(t, "retry", "--mode", "stub", "--name", "Vegeta")
		require.Nil(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Equal(t, len(lines), 5)
		require.True(t, strings.HasPrefix(lines[0], "scan "))
		require.Equal(t, lines[1:], []string{
			"attempt=1 name=Vegeta ok value=Vegeta",
			"SUCCESS name=Vegeta value=Vegeta attempts=1 elapsed=0s",
			"Vegeta = Vegeta",
			"elapsed 0s",
		})
	})
}

func TestRetryFlaky(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out, err := execute(t, "retry", "--name", "Goku", "--failures", "1")
		require.Nil(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Equal(t, lines[1:], []string{
			`attempt=1 name=Goku failed error="scouter timeout" backoff=200ms`,
			"attempt=2 name=Goku ok value=Goku",
			"SUCCESS name=Goku value=Goku attempts=2 elapsed=1.6s",
			"Goku = Goku",
			"elapsed 1.6s",
		})
	})
}

func TestRetryExhausted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out, err := execute(t,
			"retry",
			"--name", "Goku",
			"--failures", "10",
			"--attempts", "3",
			"--policy", "fixed",
			"--base", "1s",
		)
		require.ErrorIs(t, err, again.ErrExhausted)
		require.Equal(t, exitCode(err), 1)
		require.Contains(t, out, "scan failed: scouter timeout\n")
		require.True(t, strings.HasSuffix(out, "elapsed 4.1s\n"))
	})
}

func TestRetryCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		out, err := executeContext(ctx, t, "retry", "--mode", "stub")
		require.ErrorIs(t, err, again.ErrCancelled)
		require.Equal(t, exitCode(err), 130)
		require.Contains(t, out, "CANCELLED name=Goku attempts=0 elapsed=0s\n")
		require.Contains(t, out, "scan cancelled\n")
	})
}

func TestRetryInvalidFlags(t *testing.T) {
	tests := [][]string{
		{"retry", "--mode", "psychic"},
		{"retry", "--policy", "random"},
		{"retry", "--attempts", "0"},
		{"retry", "--policy", "linear", "--max-interval", "100ms"},
		{"retry", "--log-level", "loud"},
	}
	for _, args := range tests {
		_, err := execute(t, args...)
		require.NotNil(t, err)
		require.Equal(t, exitCode(err), 1)
	}
}

func TestFanOut(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out, err := execute(t, "fanout", "--mode", "concurrent-collect")
		require.Nil(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Equal(t, lines[len(lines)-5:], []string{
			"Broly      power=12000",
			"Goku       power=9000",
			"Vegeta     power=8500",
			"Gohan      power=8000",
			"elapsed 900ms",
		})
	})
}

func TestFanOutSequential(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out, err := execute(t, "fanout", "--mode", "sequential", "--names", "Goku,Vegeta,Broly")
		require.Nil(t, err)
		require.True(t, strings.HasSuffix(out, "elapsed 2.1s\n"))
		require.Contains(t, out, "SUCCESS name=Broly value=Broly attempts=1 elapsed=900ms\n")
	})
}

func TestFanOutCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := executeContext(ctx, t, "fanout", "--mode", "concurrent-independent")
		require.Equal(t, exitCode(err), 130)
	})
}

func TestHistory(t *testing.T) {
	file := path.Join(t.TempDir(), "journal")

	_, err := execute(t, "retry", "--mode", "stub", "--name", "Gohan", "--journal", file)
	require.Nil(t, err)
	_, err = execute(t, "retry", "--mode", "stub", "--name", "Goku", "--journal", file)
	require.Nil(t, err)

	out, err := execute(t, "history", "--journal", file, "--limit", "1")
	require.Nil(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, len(lines), 4)
	require.Contains(t, lines[0], "name=Goku status=success attempts=1")
	require.Equal(t, lines[1], "  attempt=1 name=Goku ok value=Goku")
	require.Equal(t, lines[3], "2 sequences, 4 events archived")

	_, err = execute(t, "history")
	require.NotNil(t, err)
}

func TestConfigFile(t *testing.T) {
	file := path.Join(t.TempDir(), "scouter.yaml")
	require.Nil(t, os.WriteFile(file, []byte("attempts: 2\nfailures: 5\npolicy: immediate\nnames: [Vegeta]\n"), 0o600))

	synctest.Test(t, func(t *testing.T) {
		out, err := execute(t, "retry", "--mode", "stub", "--config", file, "--attempts", "3")
		require.Nil(t, err)
		require.Contains(t, out, "attempts=1")

		out, err = execute(t, "retry", "--config", file)
		require.ErrorIs(t, err, again.ErrExhausted)
		require.Contains(t, out, "attempt=2 name=Goku failed")
		require.Contains(t, out, "FAILURE name=Goku error=\"scouter timeout\" attempts=2")

		out, err = execute(t, "fanout", "--config", file)
		require.Nil(t, err)
		require.Contains(t, out, "Vegeta     power=8500")
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t.Context(), t, args...)
}

func executeContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()

	var (
		out    = new(bytes.Buffer)
		errOut = new(bytes.Buffer)
		app    = newApp(out, errOut)
		cmd    = newRootCmd(app)
	)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if cerr := app.close(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	return out.String(), err
}
