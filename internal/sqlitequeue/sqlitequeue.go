// Package sqlitequeue provides a disk-backed footnote queue on SQLite.
//
// It is meant for documents whose footnote backlog between two dumps is too
// large to hold in memory. The database is scratch space for a single run:
// Open clears any rows left behind by an earlier run.
package sqlitequeue

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"

	"github.com/open-cli-collective/footnote-cli/pkg/footnote"
)

const driverName = "sqlite"

const schema = `CREATE TABLE IF NOT EXISTS footnotes (
	seq  INTEGER PRIMARY KEY,
	body BLOB NOT NULL
)`

// Queue is a footnote.Queue stored in a SQLite database file.
type Queue struct {
	db      *sql.DB
	path    string
	temp    bool
	seq     uint64
	pending int
}

var _ footnote.Queue = (*Queue)(nil)

// Open opens or creates the queue database at path. An empty path creates a
// temporary file that Close removes.
func Open(path string) (*Queue, error) {
	temp := false
	if path == "" {
		f, err := os.CreateTemp("", "fnote-queue-*.db")
		if err != nil {
			return nil, fmt.Errorf("failed to create queue file: %w", err)
		}
		path = f.Name()
		_ = f.Close()
		temp = true
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue database: %w", err)
	}
	// One connection keeps the pragmas and the table in a single session.
	db.SetMaxOpenConns(1)

	q := &Queue{db: db, path: path, temp: temp}
	for _, stmt := range []string{
		"PRAGMA journal_mode = MEMORY",
		"PRAGMA synchronous = OFF",
		schema,
		"DELETE FROM footnotes",
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = q.Close()
			return nil, fmt.Errorf("failed to initialize queue database: %w", err)
		}
	}
	return q, nil
}

// Path returns the database file location.
func (q *Queue) Path() string {
	return q.path
}

// Enqueue stores body and returns its sequence number.
func (q *Queue) Enqueue(body []byte) (uint64, error) {
	next := q.seq + 1
	if body == nil {
		body = []byte{}
	}
	if _, err := q.db.Exec("INSERT INTO footnotes (seq, body) VALUES (?, ?)", int64(next), body); err != nil {
		return 0, fmt.Errorf("failed to store footnote %d: %w", next, err)
	}
	q.seq = next
	q.pending++
	return next, nil
}

// PopFront removes and returns the oldest footnote.
func (q *Queue) PopFront() (footnote.Entry, bool, error) {
	tx, err := q.db.Begin()
	if err != nil {
		return footnote.Entry{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		seq  int64
		body []byte
	)
	err = tx.QueryRow("SELECT seq, body FROM footnotes ORDER BY seq LIMIT 1").Scan(&seq, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return footnote.Entry{}, false, nil
	}
	if err != nil {
		return footnote.Entry{}, false, fmt.Errorf("failed to read footnote: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM footnotes WHERE seq = ?", seq); err != nil {
		return footnote.Entry{}, false, fmt.Errorf("failed to remove footnote %d: %w", seq, err)
	}
	if err := tx.Commit(); err != nil {
		return footnote.Entry{}, false, fmt.Errorf("failed to commit: %w", err)
	}

	q.pending--
	return footnote.Entry{Seq: uint64(seq), Body: body}, true, nil
}

// Len returns the number of undrained footnotes.
func (q *Queue) Len() int {
	return q.pending
}

// Close closes the database and removes it if it was temporary.
func (q *Queue) Close() error {
	err := q.db.Close()
	if q.temp {
		for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
			if rmErr := os.Remove(q.path + suffix); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
				err = rmErr
			}
		}
	}
	return err
}
