package again

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Sink receives the events of retry sequences in the order they happen.
//
// Implementations must be safe for concurrent use: sequences running in parallel append to the
// same sink.
type Sink interface {
	Append(event Event)
}

// SinkFunc adapts a function to a [Sink].
type SinkFunc func(event Event)

func (f SinkFunc) Append(event Event) {
	f(event)
}

// Tee returns a sink that appends every event to each of sinks, in order.
func Tee(sinks ...Sink) Sink {
	for _, s := range sinks {
		if s == nil {
			panic("sink can't be nil")
		}
	}
	return tee(sinks)
}

type tee []Sink

func (t tee) Append(event Event) {
	for _, s := range t {
		s.Append(event)
	}
}

type discard struct{}

func (discard) Append(Event) {}

// Event is either a [Record] or a [Terminal].
type Event interface {
	fmt.Stringer
	// Sequence returns the name of the retry sequence the event belongs to.
	Sequence() string

	event()
}

// Record describes a single attempt.
type Record struct {
	// Run identifies the sequence. Every [Executor.Run] call gets a new one, so sequences that
	// share a name can still be told apart.
	Run string
	// Name of the sequence.
	Name string
	// Attempt number, starting at 1.
	Attempt int
	// Value returned by a successful attempt.
	Value any
	// Err returned by a failed attempt. It's nil if the attempt succeeded.
	Err error
	// Wait is the backoff before the next attempt. It's meaningful only if Retry is true.
	Wait time.Duration
	// Retry reports whether another attempt was scheduled after this one.
	Retry bool
	// At is the time the attempt finished.
	At time.Time
}

func (r Record) Sequence() string { return r.Name }

func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "attempt=%d name=%s", r.Attempt, r.Name)
	if r.Err == nil {
		fmt.Fprintf(&b, " ok value=%v", r.Value)
		return b.String()
	}
	fmt.Fprintf(&b, " failed error=%q", r.Err.Error())
	if r.Retry {
		fmt.Fprintf(&b, " backoff=%s", r.Wait)
	}
	return b.String()
}

func (Record) event() {}

// Terminal describes how a sequence ended.
type Terminal struct {
	Run      string
	Name     string
	Status   Status
	Value    any
	Err      error
	Attempts int
	Elapsed  time.Duration
}

func (t Terminal) Sequence() string { return t.Name }

func (t Terminal) String() string {
	switch t.Status {
	case Success:
		return fmt.Sprintf(
			"SUCCESS name=%s value=%v attempts=%d elapsed=%s",
			t.Name, t.Value, t.Attempts, t.Elapsed,
		)
	case Exhausted:
		return fmt.Sprintf(
			"FAILURE name=%s error=%q attempts=%d elapsed=%s",
			t.Name, errorText(t.Err), t.Attempts, t.Elapsed,
		)
	default:
		return fmt.Sprintf(
			"CANCELLED name=%s attempts=%d elapsed=%s",
			t.Name, t.Attempts, t.Elapsed,
		)
	}
}

func (Terminal) event() {}

// Trace is an append-only, ordered log of events. It's the default in-memory [Sink].
//
// A Trace is owned by its caller and usually covers one scan: call [Trace.Reset] before starting
// the next one. Readers get copies and never observe a partially appended event.
type Trace struct {
	mu     sync.Mutex
	events []Event
}

var _ Sink = (*Trace)(nil)

func NewTrace() *Trace {
	return &Trace{events: make([]Event, 0)}
}

func (t *Trace) Append(event Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

// Reset removes all events.
func (t *Trace) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.events)
	t.events = t.events[:0]
}

func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

// Snapshot returns a copy of all events in append order.
func (t *Trace) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := make([]Event, len(t.events))
	copy(events, t.events)
	return events
}

// Records returns the attempt records of the named sequence.
func (t *Trace) Records(name string) []Record {
	records := make([]Record, 0)
	for _, e := range t.Snapshot() {
		if r, ok := e.(Record); ok && r.Name == name {
			records = append(records, r)
		}
	}
	return records
}

// Terminal returns the terminal event of the named sequence, if it has finished.
func (t *Trace) Terminal(name string) (Terminal, bool) {
	for _, e := range t.Snapshot() {
		if term, ok := e.(Terminal); ok && term.Name == name {
			return term, true
		}
	}
	return Terminal{}, false
}

// Lines returns one human-readable line per event.
func (t *Trace) Lines() []string {
	events := t.Snapshot()
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.String()
	}
	return lines
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
