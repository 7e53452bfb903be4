// Package journal persists per-strategy extraction diagnostics to SQLite.
//
// Every strategy attempt of every extraction run becomes one row, written
// asynchronously so the extraction hot path never waits on the database:
//
//	db, _ := dbopen.Open("journal.db")
//	store := journal.NewStore(db)
//	store.Init()
//	eng := cvextract.New(cfg, cvextract.WithJournal(store))
//
// Rows answer the triage questions a failed upload raises: which strategies
// ran, what they scored, how long they took, and what broke.
package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Entry is a single strategy-attempt record.
type Entry struct {
	RunID      string // correlates the attempts of one Extract call
	Method     string // standard, alternate, ocr, manual
	TextLength int
	Score      int
	Bucket     string
	Succeeded  bool
	Error      string // empty if the strategy ran cleanly
	DurationUs int64
	Timestamp  int64 // unix microseconds
}

// Recorder is the interface the engine writes through. A nil Recorder on
// the engine disables journaling entirely.
type Recorder interface {
	RecordAsync(e *Entry)
	Close() error
}

// Schema for the extraction_attempts table. Applied by Store.Init.
const Schema = `
CREATE TABLE IF NOT EXISTS extraction_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	method TEXT NOT NULL,
	text_length INTEGER NOT NULL,
	score INTEGER NOT NULL,
	bucket TEXT NOT NULL,
	succeeded INTEGER NOT NULL,
	error TEXT,
	duration_us INTEGER NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extraction_attempts_run ON extraction_attempts(run_id);
CREATE INDEX IF NOT EXISTS idx_extraction_attempts_ts ON extraction_attempts(timestamp);
`

// Store buffers entries on a channel and flushes them in batches.
type Store struct {
	db   *sql.DB
	ch   chan *Entry
	done chan struct{}
	once sync.Once
}

// NewStore creates a journal store backed by the given database connection
// and starts its flush goroutine.
func NewStore(db *sql.DB) *Store {
	s := &Store{
		db:   db,
		ch:   make(chan *Entry, 1024),
		done: make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// Init creates the extraction_attempts table if it doesn't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// RecordAsync queues an entry for persistence. Non-blocking; drops the
// entry if the buffer is full rather than backpressuring extraction.
func (s *Store) RecordAsync(e *Entry) {
	select {
	case s.ch <- e:
	default:
	}
}

// Close drains the buffer and stops the flush goroutine.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

// AttemptsForRun returns the recorded attempts of one run in insert order.
func (s *Store) AttemptsForRun(runID string) ([]*Entry, error) {
	rows, err := s.db.Query(`SELECT run_id, method, text_length, score, bucket, succeeded, error, duration_us, timestamp
		FROM extraction_attempts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		var succeeded int
		var errMsg sql.NullString
		if err := rows.Scan(&e.RunID, &e.Method, &e.TextLength, &e.Score, &e.Bucket, &succeeded, &errMsg, &e.DurationUs, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.Succeeded = succeeded != 0
		e.Error = errMsg.String
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]*Entry, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []*Entry) {
	if len(batch) == 0 {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("journal: begin tx", "error", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO extraction_attempts
		(run_id, method, text_length, score, bucket, succeeded, error, duration_us, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		slog.Error("journal: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		succeeded := 0
		if e.Succeeded {
			succeeded = 1
		}
		if _, err := stmt.Exec(e.RunID, e.Method, e.TextLength, e.Score, e.Bucket, succeeded, e.Error, e.DurationUs, e.Timestamp); err != nil {
			slog.Error("journal: insert", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("journal: commit", "error", err)
	}
}
