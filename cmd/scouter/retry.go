package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/internal/fake"
	"github.com/teenjuna/again/lookup"
	"github.com/teenjuna/again/retry"
	"github.com/teenjuna/again/scan"
)

type retryOptions struct {
	name        string
	mode        string
	policy      string
	attempts    int
	base        time.Duration
	maxInterval time.Duration
	failures    int
}

func newRetryCmd(app *app) *cobra.Command {
	opts := new(retryOptions)

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "scan a single fighter, retrying failed readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := newPolicy(opts.policy, opts.attempts, opts.base, opts.maxInterval)
			if err != nil {
				return err
			}

			if opts.failures < 0 {
				return errors.New("failures can't be < 0")
			}

			var op again.Operation[lookup.Character]
			switch opts.mode {
			case "stub":
				op = fake.Stub(character(opts.name))
			case "flaky":
				op = fake.NewFlaky(opts.failures, character(opts.name)).
					WithDelay(reading(opts.name).delay).
					Fetch
			case "remote":
				op = app.lookup.Operation(opts.name)
			default:
				return fmt.Errorf("unknown mode %q", opts.mode)
			}

			return runRetry(cmd, app, policy, opts.name, op)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "Goku", "fighter to scan")
	flags.StringVar(&opts.mode, "mode", "flaky", "operation: stub, flaky or remote")
	flags.StringVar(&opts.policy, "policy", "exponential", "backoff: exponential, fixed, linear or immediate")
	flags.IntVar(&opts.attempts, "attempts", 4, "total number of attempts")
	flags.DurationVar(&opts.base, "base", 200*time.Millisecond, "first backoff interval")
	flags.DurationVar(&opts.maxInterval, "max-interval", 0, "backoff cap, 0 means none")
	flags.IntVar(&opts.failures, "failures", 2, "failures of the flaky operation before it succeeds")

	return cmd
}

func newPolicy(name string, attempts int, base, maxInterval time.Duration) (again.Policy, error) {
	if attempts < 1 {
		return nil, errors.New("attempts can't be < 1")
	}
	if base < 0 || maxInterval < 0 {
		return nil, errors.New("intervals can't be < 0")
	}

	switch name {
	case "exponential":
		if base == 0 {
			return nil, errors.New("base can't be 0")
		}
		policy := retry.Exponential(attempts, base)
		if maxInterval > 0 {
			if maxInterval < base {
				return nil, errors.New("max interval can't be < base")
			}
			policy = policy.WithMaxInterval(maxInterval)
		}
		return policy, nil
	case "fixed":
		return retry.Fixed(attempts, base), nil
	case "linear":
		if base == 0 || maxInterval <= base {
			return nil, errors.New("linear backoff needs 0 < base < max interval")
		}
		return retry.Linear(attempts, base, maxInterval), nil
	case "immediate":
		return retry.Immediate(attempts), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

func runRetry(
	cmd *cobra.Command,
	app *app,
	policy again.Policy,
	name string,
	op again.Operation[lookup.Character],
) error {
	out := cmd.OutOrStdout()

	store := scan.NewStore()
	store.Subscribe(func(s scan.State) {
		if len(s.Lines) > 0 {
			_, _ = fmt.Fprintln(out, s.Lines[len(s.Lines)-1])
		}
	})

	id := uuid.NewString()
	sink, recorder := app.sinks(id, store)

	exec := again.New(policy,
		again.WithSink[lookup.Character](sink),
		again.WithLogger[lookup.Character](app.logger.With("scan", id)),
		again.WithPrometheus[lookup.Character](app.prometheus),
	)

	_, _ = fmt.Fprintf(out, "scan %s\n", id)
	store.Reset(id, name)
	outcome := exec.Run(cmd.Context(), name, op)
	state := store.State()

	switch state.Phase {
	case scan.Success:
		_, _ = fmt.Fprintln(out, state.Result)
	case scan.Failure:
		_, _ = fmt.Fprintf(out, "scan failed: %s\n", state.Error)
	case scan.Cancelled:
		_, _ = fmt.Fprintln(out, "scan cancelled")
	}
	_, _ = fmt.Fprintf(out, "elapsed %s\n", outcome.Elapsed.Round(time.Millisecond))

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			app.logger.Error("failed to archive scan", "scan", id, "error", err)
		}
	}

	switch outcome.Status {
	case again.Exhausted:
		return &exitError{code: 1, err: outcome.Err()}
	case again.Cancelled:
		return &exitError{code: 130, err: outcome.Err()}
	default:
		return nil
	}
}
