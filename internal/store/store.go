// Package store handles SQLite persistence of committed speed sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keywrapped/keywrapped/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the speed session archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS speed_sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			keystrokes INTEGER NOT NULL,
			avg_interval_ms REAL NOT NULL,
			accuracy_pct REAL NOT NULL,
			earned INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_speed_sessions_ended_at ON speed_sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession archives one committed speed session.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO speed_sessions (id, started_at, ended_at, keystrokes, avg_interval_ms, accuracy_pct, earned)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Keystrokes,
		rec.AvgIntervalMs,
		rec.AccuracyPct,
		boolToInt(rec.Earned),
	)
	return err
}

// ListSessions returns archived sessions in chronological order, optionally
// bounded by a start time and a maximum count.
func (s *Store) ListSessions(ctx context.Context, since *time.Time, limit int) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, keystrokes, avg_interval_ms, accuracy_pct, earned
		FROM speed_sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt string
		var earned int
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.Keystrokes, &rec.AvgIntervalMs, &rec.AccuracyPct, &earned); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		rec.Earned = earned != 0
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Totals summarizes the whole archive.
type Totals struct {
	Sessions      int64
	Earned        int64
	AvgIntervalMs float64
}

// GetTotals aggregates session counts and the mean of session averages.
func (s *Store) GetTotals(ctx context.Context) (Totals, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(earned), 0), COALESCE(AVG(avg_interval_ms), 0) FROM speed_sessions`)
	var t Totals
	if err := row.Scan(&t.Sessions, &t.Earned, &t.AvgIntervalMs); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// Archive satisfies the accumulator's session sink with a background
// context; inserts are short and the archive is advisory.
func (s *Store) Archive(rec model.SessionRecord) error {
	return s.InsertSession(context.Background(), rec)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
