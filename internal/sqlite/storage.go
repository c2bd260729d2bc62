package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrClosed is returned by Storage methods when the storage has been closed.
	ErrClosed = errors.New("storage is closed")
	// ErrNotFound is returned by [Storage.Get] when there's no sequence with the given ID.
	ErrNotFound = errors.New("sequence not found")
)

const (
	memory = ":memory:"
)

// Storage is a persistent archive of finished retry sequences backed by SQLite.
type Storage struct {
	cfg *Config
	db  *sql.DB
}

// New creates a new Storage with the provided configuration functions.
//
// Default configuration:
//   - File: ":memory:" (in-memory database)
//   - Durable: false
//   - Workers: 1
//   - Limit: 0 (keep everything)
//
// Returns an error if the SQLite database cannot be opened or initialized.
func New(configFuncs ...ConfigFunc) (*Storage, error) {
	cfg := &Config{}
	cfg.File(memory)
	cfg.Workers(1)
	for _, cf := range configFuncs {
		cf(cfg)
	}

	db, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	if err := setup(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setup: %w", err)
	}

	storage := Storage{
		cfg: cfg,
		db:  db,
	}

	return &storage, nil
}

// Push inserts a finished sequence into the storage and returns its ID.
//
// If [Config.Limit] is set, the oldest sequences beyond the limit are removed in the same
// transaction.
//
// Returns [ErrClosed] if the storage has been closed.
func (s *Storage) Push(row Row) (RowID, error) {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.PushedAt.IsZero() {
		row.PushedAt = time.Now()
	}
	if row.Data == nil {
		row.Data = []byte{}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", closed(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`
		insert into sequence (
			id,
			scan_id,
			name,
			status,
			attempts,
			data,
			size,
			pushed_at
		) values (
			:id,
			:scan_id,
			:name,
			:status,
			:attempts,
			:data,
			:size,
			:pushed_at
		)
		`,
		sql.Named("id", row.ID),
		sql.Named("scan_id", row.ScanID),
		sql.Named("name", row.Name),
		sql.Named("status", row.Status),
		sql.Named("attempts", row.Attempts),
		sql.Named("data", row.Data),
		sql.Named("size", row.Size),
		sql.Named("pushed_at", toTimestamp(row.PushedAt)),
	); err != nil {
		return "", closed(err)
	}

	if s.cfg.limit > 0 {
		if _, err := tx.Exec(
			`
			delete from sequence
			where
				id not in (
					select id from sequence
					order by
						pushed_at desc,
						rowid desc
					limit :limit
				)
			`,
			sql.Named("limit", s.cfg.limit),
		); err != nil {
			return "", fmt.Errorf("trim: %w", closed(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return "", closed(err)
	}

	return row.ID, nil
}

// Recent returns up to limit sequences, newest first. A limit <= 0 returns all of them.
//
// Returns [ErrClosed] if the storage has been closed.
func (s *Storage) Recent(limit int) ([]Row, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`
		select * from sequence
		order by
			pushed_at desc,
			rowid desc
		limit :limit
		`,
		sql.Named("limit", limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", closed(err))
	}
	defer rows.Close()

	result := make([]Row, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return result, nil
}

// Get returns the sequence with the given ID or [ErrNotFound].
func (s *Storage) Get(id RowID) (Row, error) {
	row, err := scanRow(s.db.QueryRow(
		"select * from sequence where id = :id",
		sql.Named("id", id),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, ErrNotFound
	} else if err != nil {
		return Row{}, closed(err)
	}
	return row, nil
}

// Delete permanently removes one or more sequences from the storage.
func (s *Storage) Delete(ids ...RowID) error {
	_, err := s.db.Exec(
		`
		delete from sequence
		where 
			id in (
				select value from json_each(:ids)
			)
		`,
		sql.Named("ids", jsonIDs(ids)),
	)
	return closed(err)
}

// Stats returns current storage statistics.
//
// Returns the total number of sequences, the total number of events across all of them, and the
// time the oldest one was pushed.
func (s *Storage) Stats() (*Stats, error) {
	var (
		sequences int
		events    int
		oldest    int64
	)
	err := s.db.QueryRow(
		`
		select 
			coalesce(count(*), 0) as sequences,
			coalesce(sum(size), 0) as events,
			coalesce(min(pushed_at), 0) as oldest
		from
			sequence
		`,
	).Scan(
		&sequences,
		&events,
		&oldest,
	)
	if err != nil {
		return nil, closed(err)
	}

	stats := Stats{
		Sequences: sequences,
		Events:    events,
	}
	if oldest != 0 {
		stats.Oldest = fromTimestamp(oldest)
	}

	return &stats, nil
}

// Close closes the underlying SQLite database.
//
// After closing, all methods on Storage will return [ErrClosed].
func (s *Storage) Close() error {
	return s.db.Close()
}

// Row is a stored retry sequence.
type Row struct {
	// ID is the unique identifier of this sequence. It's generated on push if empty.
	ID RowID
	// ScanID groups the sequences recorded during one scan.
	ScanID string
	// Name of the sequence.
	Name string
	// Status is the textual terminal status.
	Status string
	// Attempts is the number of attempts made.
	Attempts int
	// Data is the encoded list of events.
	Data []byte
	// Size is the number of events in Data.
	Size int
	// PushedAt is the time when the sequence was archived.
	PushedAt time.Time
}

type RowID = string

// Stats represents statistics about the storage.
type Stats struct {
	// Sequences is the total number of stored sequences.
	Sequences int
	// Events is the total number of events across all sequences.
	Events int
	// Oldest is the push time of the oldest sequence. It's zero if the storage is empty.
	Oldest time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (Row, error) {
	var (
		row      Row
		pushedAt int64
	)
	if err := s.Scan(
		&row.ID,
		&row.ScanID,
		&row.Name,
		&row.Status,
		&row.Attempts,
		&row.Data,
		&row.Size,
		&pushedAt,
	); err != nil {
		return Row{}, err
	}
	row.PushedAt = fromTimestamp(pushedAt)
	return row, nil
}

func open(cfg *Config) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_txlock", "immediate")
	params.Add("_timeout", "5000") // 5s

	file := cfg.file
	if file == memory {
		file = uuid.NewString()
		params.Add("mode", "memory")
		params.Add("cache", "shared")
	} else {
		params.Add("_journal", "wal")
		params.Add("_sync", "normal")
		params.Add("_cache_size", "-20000") // 20mb
		if cfg.durable {
			params.Set("_sync", "full")
		}
	}

	uri := url.URL{Scheme: "file", Opaque: file, RawQuery: params.Encode()}

	db, err := sql.Open("sqlite3", uri.String())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)
	if params.Get("mode") == "memory" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.workers)
		db.SetMaxIdleConns(cfg.workers)
	}

	return db, nil
}

func setup(db *sql.DB) error {
	if _, err := db.Exec(
		`
		create table if not exists sequence (
			id        text primary key,
			scan_id   text not null,
			name      text not null,
			status    text not null,
			attempts  int not null,
			data      blob not null,
			size      int not null,
			pushed_at int not null
		) strict
		`,
	); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	// Create the index for the retention and listing logic.
	if _, err := db.Exec(
		`
		create index if not exists idx_sequence_pushed_at
		on sequence (pushed_at, id)
		`,
	); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	if _, err := db.Exec(
		`
		create index if not exists idx_sequence_scan
		on sequence (scan_id)
		`,
	); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	return nil
}

func closed(err error) error {
	if err != nil && err.Error() == "sql: database is closed" {
		return ErrClosed
	}
	return err
}

func jsonIDs(ids []RowID) string {
	jsonIDs, _ := json.Marshal(ids)
	return string(jsonIDs)
}

func toTimestamp(time time.Time) int64 {
	return time.UnixNano()
}

func fromTimestamp(timestamp int64) time.Time {
	return time.Unix(0, timestamp)
}
