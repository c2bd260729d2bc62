// Scouter measures fighters' power levels with retries and fan-out scans.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, os.Stderr)
	err := newRootCmd(app).ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if cerr := app.close(); cerr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: close: %v\n", cerr)
	}

	stop()
	os.Exit(exitCode(err))
}

// exitError carries a process exit code for outcomes that aren't usage errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return 1
}
