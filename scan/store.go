package scan

import (
	"sync"

	"github.com/teenjuna/again"
)

var _ again.Sink = (*Store)(nil)

// Store holds the current scan state and publishes every new snapshot to its subscribers.
//
// Events of sequences other than the current scan's are ignored, so a Store can share a sink with
// concurrent work.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []func(State)
}

func NewStore() *Store {
	return &Store{
		state: State{Lines: make([]string, 0)},
	}
}

// Subscribe registers fn to be called with every new state. Calls happen in order, while the
// store is locked, so fn must not call back into the store.
func (s *Store) Subscribe(fn func(State)) {
	if fn == nil {
		panic("subscriber can't be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Reset discards the current state and starts a new scan.
func (s *Store) Reset(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(Start(id, name))
}

func (s *Store) Append(event again.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == Idle || event.Sequence() != s.state.Name {
		return
	}
	s.publish(Reduce(s.state, event))
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) publish(state State) {
	s.state = state
	for _, fn := range s.subscribers {
		fn(state)
	}
}
