package emit

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteEmitter records an append-only trace of a single simulator run into
// a SQLite database, grounded on the teacher corpus's
// graph/store/sqlite.go connection setup (pure-Go driver, WAL mode, a
// single writer connection). This is a run trace, not simulator-state
// persistence: spec.md's Non-goal excludes resuming a simulator from
// on-disk state, not writing an append-only record of one run's events.
type SQLiteEmitter struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteEmitter opens (creating if needed) a SQLite database at path and
// prepares its single events table.
func NewSQLiteEmitter(path string) (*SQLiteEmitter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	step INTEGER NOT NULL,
	sim_time_ps INTEGER NOT NULL,
	task_id TEXT NOT NULL,
	msg TEXT NOT NULL,
	meta TEXT NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteEmitter{db: db}, nil
}

func (s *SQLiteEmitter) Emit(event Event) {
	_ = s.insert(event)
}

func (s *SQLiteEmitter) insert(event Event) error {
	meta, err := json.Marshal(event.Meta)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO events (run_id, step, sim_time_ps, task_id, msg, meta) VALUES (?, ?, ?, ?, ?, ?)`,
		event.RunID, event.Step, event.Time, event.TaskID, event.Msg, string(meta),
	)
	return err
}

func (s *SQLiteEmitter) EmitBatch(ctx context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (run_id, step, sim_time_ps, task_id, msg, meta) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, event := range events {
		meta, err := json.Marshal(event.Meta)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, event.RunID, event.Step, event.Time, event.TaskID, event.Msg, string(meta)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteEmitter) Flush(context.Context) error { return nil }

// Close releases the underlying database handle.
func (s *SQLiteEmitter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
