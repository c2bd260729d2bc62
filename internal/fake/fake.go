// Package fake contains test doubles for operations and policies.
package fake

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/teenjuna/again"
)

// ErrTimeout is the default error of failing doubles.
var ErrTimeout = errors.New("scouter timeout")

// Stub returns an operation that always succeeds with value.
func Stub[V any](value V) again.Operation[V] {
	return func(context.Context) (V, error) {
		return value, nil
	}
}

// Flaky fails a fixed number of times and then succeeds. It's safe for concurrent use.
type Flaky[V any] struct {
	mu       sync.Mutex
	failures int
	value    V
	err      error
	delay    time.Duration
	calls    int
}

// NewFlaky returns a double that fails failures times before returning value.
func NewFlaky[V any](failures int, value V) *Flaky[V] {
	if failures < 0 {
		panic("failures can't be < 0")
	}
	return &Flaky[V]{
		failures: failures,
		value:    value,
		err:      ErrTimeout,
	}
}

// Failing returns a double that never succeeds.
func Failing[V any](err error) *Flaky[V] {
	var zero V
	return NewFlaky(math.MaxInt, zero).WithError(err)
}

func (f *Flaky[V]) WithError(err error) *Flaky[V] {
	if err == nil {
		panic("error can't be nil")
	}
	f.err = err
	return f
}

// WithDelay makes every call take delay, simulating latency. A call interrupted by its context
// returns the context error.
func (f *Flaky[V]) WithDelay(delay time.Duration) *Flaky[V] {
	if delay < 0 {
		panic("delay can't be < 0")
	}
	f.delay = delay
	return f
}

// Fetch is the [again.Operation].
func (f *Flaky[V]) Fetch(ctx context.Context) (V, error) {
	var zero V

	f.mu.Lock()
	f.calls += 1
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures -= 1
		return zero, f.err
	}
	return f.value, nil
}

// Calls returns the number of times Fetch was called.
func (f *Flaky[V]) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// SpyPolicy wraps a policy and records every attempt number its Backoff is asked about.
type SpyPolicy struct {
	again.Policy

	mu      sync.Mutex
	queried []int
}

func Spy(policy again.Policy) *SpyPolicy {
	return &SpyPolicy{Policy: policy, queried: make([]int, 0)}
}

func (s *SpyPolicy) Backoff(attempt int) time.Duration {
	s.mu.Lock()
	s.queried = append(s.queried, attempt)
	s.mu.Unlock()
	return s.Policy.Backoff(attempt)
}

// Queried returns the attempt numbers passed to Backoff so far, in call order.
func (s *SpyPolicy) Queried() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queried)
}
