// Package journal archives finished retry sequences in SQLite for later inspection.
//
// A [Recorder] is an [again.Sink]: it buffers the events of every sequence and stores them once
// the sequence's terminal event arrives.
package journal

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/teenjuna/again"
	"github.com/teenjuna/again/buffer"
	"github.com/teenjuna/again/codec"
	"github.com/teenjuna/again/internal/sqlite"
)

var (
	// ErrClosed is returned when the journal has been closed.
	ErrClosed = sqlite.ErrClosed
	// ErrNotFound is returned by [Journal.Get] for unknown sequence IDs.
	ErrNotFound = sqlite.ErrNotFound
)

type Stats = sqlite.Stats

type Journal struct {
	cfg     *config
	storage *sqlite.Storage

	// Guards cfg.codec, which is used for decoding.
	mu sync.Mutex
}

// Open creates a journal. By default it lives in memory and keeps every sequence.
func Open(options ...Option) (*Journal, error) {
	cfg := newConfig(options...)

	storage, err := sqlite.New(cfg.storage...)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	return &Journal{
		cfg:     cfg,
		storage: storage,
	}, nil
}

// Recorder returns a sink archiving the sequences of one scan. An empty scanID is replaced with a
// random one.
func (j *Journal) Recorder(scanID string) *Recorder {
	if scanID == "" {
		scanID = uuid.NewString()
	}
	return &Recorder{
		journal: j,
		scanID:  scanID,
		codec:   j.cfg.codec.Derive(),
		pending: buffer.Grouping(func(e Entry) sequenceKey { return sequenceKey{e.Run, e.Name} }),
	}
}

// Recent returns up to limit sequences, newest first. A limit <= 0 returns all of them.
func (j *Journal) Recent(limit int) ([]Sequence, error) {
	rows, err := j.storage.Recent(limit)
	if err != nil {
		return nil, err
	}

	sequences := make([]Sequence, len(rows))
	for i, row := range rows {
		if sequences[i], err = j.decode(row); err != nil {
			return nil, err
		}
	}

	return sequences, nil
}

func (j *Journal) Get(id string) (Sequence, error) {
	row, err := j.storage.Get(id)
	if err != nil {
		return Sequence{}, err
	}
	return j.decode(row)
}

func (j *Journal) Delete(ids ...string) error {
	return j.storage.Delete(ids...)
}

func (j *Journal) Stats() (*Stats, error) {
	return j.storage.Stats()
}

func (j *Journal) Close() error {
	return j.storage.Close()
}

func (j *Journal) decode(row sqlite.Row) (Sequence, error) {
	sequence := Sequence{
		ID:       row.ID,
		ScanID:   row.ScanID,
		Name:     row.Name,
		Status:   row.Status,
		Attempts: row.Attempts,
		PushedAt: row.PushedAt,
		Entries:  make([]Entry, 0, row.Size),
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	push := func(e Entry) {
		sequence.Entries = append(sequence.Entries, e)
	}
	if err := j.cfg.codec.Decode(row.Data, push); err != nil {
		return Sequence{}, fmt.Errorf("decode %s: %w", row.ID, err)
	}

	return sequence, nil
}

// Recorder is an [again.Sink] writing finished sequences to a [Journal]. It's safe for
// concurrent use.
type Recorder struct {
	journal *Journal
	scanID  string

	mu      sync.Mutex
	codec   codec.Codec[Entry]
	pending *buffer.GroupingBuffer[Entry, sequenceKey]
	errs    []error
}

// Events are grouped by run. The name is part of the key for events built without one.
type sequenceKey struct {
	run  string
	name string
}

var _ again.Sink = (*Recorder)(nil)

func (r *Recorder) ScanID() string {
	return r.scanID
}

func (r *Recorder) Append(event again.Event) {
	entry := NewEntry(event)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending.Push(entry)

	terminal, ok := event.(again.Terminal)
	if !ok {
		return
	}

	name := terminal.Name
	if err := r.store(terminal, r.pending.Take(sequenceKey{terminal.Run, name})); err != nil {
		r.journal.cfg.logger.Error("failed to archive sequence",
			"scan", r.scanID,
			"name", name,
			"error", err,
		)
		r.errs = append(r.errs, fmt.Errorf("%s: %w", name, err))
	}
}

// Pending returns the number of sequences that haven't finished yet.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending.Groups()
}

// Err returns the errors of failed writes, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

func (r *Recorder) store(terminal again.Terminal, entries []Entry) error {
	data, err := r.codec.Encode(slices.Values(entries))
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	id, err := r.journal.storage.Push(sqlite.Row{
		ScanID:   r.scanID,
		Name:     terminal.Name,
		Status:   terminal.Status.String(),
		Attempts: terminal.Attempts,
		Data:     data,
		Size:     len(entries),
	})
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	r.journal.cfg.logger.Debug("sequence archived",
		"id", id,
		"scan", r.scanID,
		"name", terminal.Name,
		"status", terminal.Status,
	)

	return nil
}
