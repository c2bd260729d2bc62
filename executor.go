// Package again runs operations that can fail, retrying them according to a [Policy] and
// reporting every attempt to a [Sink].
package again

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Executor runs retry sequences of operations producing values of type V.
//
// An Executor holds no per-sequence state and is safe for concurrent use.
type Executor[V any] struct {
	cfg    *config[V]
	policy Policy
}

func New[V any](policy Policy, options ...Option[V]) *Executor[V] {
	if policy == nil {
		panic("policy can't be nil")
	}
	if policy.Attempts() < 1 {
		panic("attempts can't be < 1")
	}
	return &Executor[V]{
		cfg:    newConfig(options...),
		policy: policy,
	}
}

// Run invokes op until it succeeds or the policy runs out of attempts, waiting between failed
// attempts. Every attempt is appended to the sink before the executor waits or returns, followed
// by a single [Terminal] event.
//
// Run never returns an error itself: failures are reported in the [Outcome]. If ctx is done
// before an attempt or during a wait, the outcome is [Cancelled].
func (e *Executor[V]) Run(ctx context.Context, name string, op Operation[V]) Outcome[V] {
	var (
		run      = uuid.NewString()
		started  = time.Now()
		attempts = e.policy.Attempts()
		metrics  = e.cfg.prometheus.metrics()
		lastErr  error
	)

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return e.finish(run, name, started, Outcome[V]{
				Status:   Cancelled,
				Attempts: attempt - 1,
				Last:     lastErr,
				cause:    context.Cause(ctx),
			})
		}

		attemptStarted := time.Now()
		value, err := op(ctx)
		metrics.attempts.Inc()
		metrics.attemptDuration.Observe(time.Since(attemptStarted).Seconds())

		if err == nil {
			e.cfg.sink.Append(Record{
				Run:     run,
				Name:    name,
				Attempt: attempt,
				Value:   value,
				At:      time.Now(),
			})
			return e.finish(run, name, started, Outcome[V]{
				Status:   Success,
				Value:    value,
				Attempts: attempt,
			})
		}

		lastErr = err
		metrics.attemptErrors.Inc()

		// The operation gave up because it saw the cancellation.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			e.cfg.sink.Append(Record{Run: run, Name: name, Attempt: attempt, Err: err, At: time.Now()})
			return e.finish(run, name, started, Outcome[V]{
				Status:   Cancelled,
				Attempts: attempt,
				Last:     err,
				cause:    context.Cause(ctx),
			})
		}

		if attempt >= attempts {
			e.cfg.sink.Append(Record{Run: run, Name: name, Attempt: attempt, Err: err, At: time.Now()})
			return e.finish(run, name, started, Outcome[V]{
				Status:   Exhausted,
				Attempts: attempt,
				Last:     err,
			})
		}

		wait := e.policy.Backoff(attempt)
		metrics.backoff.Observe(wait.Seconds())
		e.cfg.sink.Append(Record{
			Run:     run,
			Name:    name,
			Attempt: attempt,
			Err:     err,
			Wait:    wait,
			Retry:   true,
			At:      time.Now(),
		})
		e.cfg.logger.DebugContext(ctx, "attempt failed",
			"name", name,
			"attempt", attempt,
			"error", err,
			"backoff", wait,
		)

		if !sleep(ctx, wait) {
			return e.finish(run, name, started, Outcome[V]{
				Status:   Cancelled,
				Attempts: attempt,
				Last:     lastErr,
				cause:    context.Cause(ctx),
			})
		}
	}
}

// Wrap returns an operation that runs a whole retry sequence of op each time it's invoked. It
// returns the value on success and [Outcome.Err] otherwise.
func (e *Executor[V]) Wrap(name string, op Operation[V]) Operation[V] {
	return func(ctx context.Context) (V, error) {
		outcome := e.Run(ctx, name, op)
		return outcome.Value, outcome.Err()
	}
}

func (e *Executor[V]) finish(run, name string, started time.Time, outcome Outcome[V]) Outcome[V] {
	outcome.Elapsed = time.Since(started)

	terminal := Terminal{
		Run:      run,
		Name:     name,
		Status:   outcome.Status,
		Attempts: outcome.Attempts,
		Elapsed:  outcome.Elapsed,
	}
	if outcome.Status == Success {
		terminal.Value = outcome.Value
	} else {
		terminal.Err = outcome.Last
	}
	e.cfg.sink.Append(terminal)

	metrics := e.cfg.prometheus.metrics()
	metrics.outcomes.WithLabelValues(outcome.Status.String()).Inc()
	metrics.sequenceDuration.Observe(outcome.Elapsed.Seconds())

	logger := e.cfg.logger.With(
		"name", name,
		"attempts", outcome.Attempts,
		"elapsed", outcome.Elapsed,
	)
	switch outcome.Status {
	case Success:
		logger.Info("sequence succeeded")
	case Exhausted:
		logger.Warn("sequence exhausted", "error", outcome.Last)
	case Cancelled:
		logger.Info("sequence cancelled", "cause", outcome.cause)
	}

	return outcome
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
