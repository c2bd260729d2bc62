package main

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/lookup"
	"github.com/teenjuna/again/retry"
)

type fanOutOptions struct {
	mode     string
	names    []string
	remote   bool
	attempts int
	base     time.Duration
}

func newFanOutCmd(app *app) *cobra.Command {
	opts := new(fanOutOptions)

	cmd := &cobra.Command{
		Use:   "fanout",
		Short: "scan several fighters and rank them by power",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := again.ParseMode(opts.mode)
			if err != nil {
				return err
			}
			if len(opts.names) == 0 {
				return errors.New("names can't be empty")
			}
			if opts.attempts < 1 {
				return errors.New("attempts can't be < 1")
			}
			if opts.base <= 0 {
				return errors.New("base can't be <= 0")
			}
			return runFanOut(cmd, app, mode, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.mode, "mode", again.ConcurrentCollect.String(),
		"sequential, concurrent-independent or concurrent-collect")
	flags.StringSliceVar(&opts.names, "names", []string{"Goku", "Vegeta", "Broly", "Gohan"}, "fighters to scan")
	flags.BoolVar(&opts.remote, "remote", false, "look fighters up in the character API instead of simulating")
	flags.IntVar(&opts.attempts, "attempts", 1, "attempts per fighter")
	flags.DurationVar(&opts.base, "base", 200*time.Millisecond, "first backoff interval")

	return cmd
}

func runFanOut(cmd *cobra.Command, app *app, mode again.Mode, opts *fanOutOptions) error {
	var (
		out     = cmd.OutOrStdout()
		id      = uuid.NewString()
		trace   = again.NewTrace()
		started = time.Now()
	)

	sink, recorder := app.sinks(id, trace)
	exec := again.New(retry.Exponential(opts.attempts, opts.base),
		again.WithSink[lookup.Character](sink),
		again.WithLogger[lookup.Character](app.logger.With("scan", id, "mode", mode.String())),
		again.WithPrometheus[lookup.Character](app.prometheus),
	)

	ops := make([]again.Operation[lookup.Character], len(opts.names))
	for i, name := range opts.names {
		name = strings.TrimSpace(name)
		op := scout(name)
		if opts.remote {
			op = app.lookup.Operation(name)
		}
		ops[i] = exec.Wrap(name, op)
	}

	_, _ = fmt.Fprintf(out, "scan %s mode=%s\n", id, mode)
	results, err := again.FanOut(cmd.Context(), mode, ops...)

	for _, line := range trace.Lines() {
		_, _ = fmt.Fprintln(out, line)
	}

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			app.logger.Error("failed to archive scan", "scan", id, "error", err)
		}
	}

	if results != nil {
		again.SortResults(results, func(a, b again.Result[lookup.Character]) int {
			// Failures go last.
			if (a.Err == nil) != (b.Err == nil) {
				if a.Err == nil {
					return -1
				}
				return 1
			}
			return cmp.Compare(b.Value.Power(), a.Value.Power())
		})

		for _, r := range results {
			name := strings.TrimSpace(opts.names[r.Index])
			if r.Err != nil {
				_, _ = fmt.Fprintf(out, "%-10s error=%q\n", name, r.Err.Error())
				continue
			}
			_, _ = fmt.Fprintf(out, "%-10s power=%d\n", name, r.Value.Power())
		}
	}
	_, _ = fmt.Fprintf(out, "elapsed %s\n", time.Since(started).Round(time.Millisecond))

	switch {
	case err == nil:
		return nil
	case cmd.Context().Err() != nil:
		return &exitError{code: 130, err: err}
	default:
		return &exitError{code: 1, err: err}
	}
}
