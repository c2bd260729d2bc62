package journal

import (
	"fmt"
	"time"

	"github.com/teenjuna/again"
)

type Kind string

const (
	KindRecord   Kind = "record"
	KindTerminal Kind = "terminal"
)

// Entry is the stored form of an [again.Event]. Values and errors are kept as text so that any
// codec can encode them.
type Entry struct {
	Kind     Kind
	Run      string        `json:",omitempty"`
	Name     string
	Line     string
	Attempt  int           `json:",omitempty"`
	Value    string        `json:",omitempty"`
	Error    string        `json:",omitempty"`
	Wait     time.Duration `json:",omitempty"`
	Retry    bool          `json:",omitempty"`
	Status   string        `json:",omitempty"`
	Attempts int           `json:",omitempty"`
	Elapsed  time.Duration `json:",omitempty"`
	At       time.Time
}

// NewEntry converts event. It panics on events of unknown types.
func NewEntry(event again.Event) Entry {
	switch e := event.(type) {
	case again.Record:
		entry := Entry{
			Kind:    KindRecord,
			Run:     e.Run,
			Name:    e.Name,
			Line:    e.String(),
			Attempt: e.Attempt,
			Wait:    e.Wait,
			Retry:   e.Retry,
			At:      e.At,
		}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		} else {
			entry.Value = fmt.Sprint(e.Value)
		}
		return entry
	case again.Terminal:
		entry := Entry{
			Kind:     KindTerminal,
			Run:      e.Run,
			Name:     e.Name,
			Line:     e.String(),
			Status:   e.Status.String(),
			Attempts: e.Attempts,
			Elapsed:  e.Elapsed,
			At:       time.Now(),
		}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		if e.Status == again.Success {
			entry.Value = fmt.Sprint(e.Value)
		}
		return entry
	default:
		panic(fmt.Sprintf("unknown event type %T", event))
	}
}

// Sequence is an archived retry sequence.
type Sequence struct {
	ID       string
	ScanID   string
	Name     string
	Status   string
	Attempts int
	PushedAt time.Time
	Entries  []Entry
}

// Lines returns the trace lines of the sequence in the order they were appended.
func (s Sequence) Lines() []string {
	lines := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		lines[i] = e.Line
	}
	return lines
}
