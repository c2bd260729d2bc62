package again

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExhausted is matched by errors of retry sequences whose final attempt failed.
	ErrExhausted = errors.New("attempts exhausted")
	// ErrCancelled is matched by errors of retry sequences that were cancelled.
	ErrCancelled = errors.New("cancelled")
)

// Status is the terminal state of a retry sequence.
type Status int

const (
	// Success means one of the attempts returned a value.
	Success Status = iota + 1
	// Exhausted means every attempt failed.
	Exhausted
	// Cancelled means the context was done before the sequence could finish.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Exhausted:
		return "exhausted"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of [Executor.Run].
type Outcome[V any] struct {
	Status Status
	// Value is set only when Status is Success.
	Value V
	// Attempts is the number of attempts actually made. It equals the policy's attempts when the
	// sequence is Exhausted, but also when the final attempt was cut short by cancellation.
	Attempts int
	// Last is the error of the last failed attempt. It's nil on success.
	Last error
	// Elapsed is the time spent from the start of the sequence until its terminal state.
	Elapsed time.Duration

	cause error
}

// OK reports whether the sequence succeeded.
func (o Outcome[V]) OK() bool {
	return o.Status == Success
}

// Err returns nil on success, an [*ExhaustedError] if attempts were exhausted and a
// [*CancelledError] if the sequence was cancelled.
func (o Outcome[V]) Err() error {
	switch o.Status {
	case Success:
		return nil
	case Exhausted:
		return &ExhaustedError{Err: o.Last, Attempts: o.Attempts}
	case Cancelled:
		return &CancelledError{Attempts: o.Attempts, Cause: o.cause}
	default:
		return fmt.Errorf("invalid outcome status %s", o.Status)
	}
}

// ExhaustedError carries the error of the final attempt.
type ExhaustedError struct {
	Err      error
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%d attempts failed: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// CancelledError is returned for sequences stopped by their context. Cause is the cause of the
// context cancellation.
type CancelledError struct {
	Attempts int
	Cause    error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *CancelledError) Unwrap() error {
	return e.Cause
}

func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}
