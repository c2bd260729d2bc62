// Package scan tracks the lifecycle of a single retry scan as an immutable [State] driven by
// trace events.
package scan

import (
	"fmt"
	"slices"

	"github.com/teenjuna/again"
)

type Phase int

const (
	Idle Phase = iota
	Running
	Success
	Failure
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Done reports whether the phase is terminal.
func (p Phase) Done() bool {
	return p == Success || p == Failure || p == Cancelled
}

// State is a snapshot of a scan. Values are never modified after creation: [Reduce] returns a new
// one.
type State struct {
	ID      string
	Name    string
	Phase   Phase
	Attempt int
	// Result is set on success, as "<name> = <value>".
	Result string
	// Error is the text of the last failure when the scan exhausted its attempts.
	Error string
	// Lines holds the trace lines of the scan in append order.
	Lines []string
}

// Start returns the state of a scan that's about to make its first attempt.
func Start(id, name string) State {
	return State{
		ID:    id,
		Name:  name,
		Phase: Running,
		Lines: make([]string, 0),
	}
}

// Reduce returns the state following event. The input state is left untouched.
func Reduce(state State, event again.Event) State {
	next := state
	next.Lines = append(slices.Clip(state.Lines), event.String())

	switch e := event.(type) {
	case again.Record:
		next.Phase = Running
		next.Attempt = e.Attempt
	case again.Terminal:
		next.Attempt = e.Attempts
		switch e.Status {
		case again.Success:
			next.Phase = Success
			next.Result = fmt.Sprintf("%s = %v", e.Name, e.Value)
		case again.Exhausted:
			next.Phase = Failure
			if e.Err != nil {
				next.Error = e.Err.Error()
			}
		case again.Cancelled:
			next.Phase = Cancelled
		}
	}

	return next
}
