// Package store handles SQLite persistence of survey load history.
package store

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/noisetui/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the load history.
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
		`CREATE TABLE IF NOT EXISTS survey_loads (
			id INTEGER PRIMARY KEY,
			loaded_at TEXT NOT NULL,
			file_name TEXT NOT NULL,
			position TEXT NOT NULL,
			first_sample TEXT NOT NULL,
			last_sample TEXT NOT NULL,
			samples INTEGER NOT NULL,
			leq REAL,
			l90 REAL,
			lmax REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_survey_loads_loaded_at ON survey_loads(loaded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRecords stores one row per loaded position in a single transaction.
func (s *Store) InsertRecords(ctx context.Context, records []model.SurveyRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO survey_loads (loaded_at, file_name, position, first_sample, last_sample, samples, leq, l90, lmax)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, r := range records {
		_, err = stmt.ExecContext(ctx,
			r.LoadedAt.Format(time.RFC3339Nano),
			r.FileName,
			r.Position,
			r.FirstSample.Format(time.RFC3339Nano),
			r.LastSample.Format(time.RFC3339Nano),
			r.Samples,
			levelValue(r.Leq),
			levelValue(r.L90),
			levelValue(r.Lmax),
		)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// ListRecent returns the most recent load records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]model.SurveyRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, loaded_at, file_name, position, first_sample, last_sample, samples, leq, l90, lmax
		 FROM survey_loads
		 ORDER BY loaded_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SurveyRecord
	for rows.Next() {
		var r model.SurveyRecord
		var loadedAt, firstSample, lastSample string
		var leq, l90, lmax sql.NullFloat64
		if err := rows.Scan(&r.ID, &loadedAt, &r.FileName, &r.Position, &firstSample, &lastSample, &r.Samples, &leq, &l90, &lmax); err != nil {
			return nil, err
		}
		if r.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt); err != nil {
			return nil, err
		}
		if r.FirstSample, err = time.Parse(time.RFC3339Nano, firstSample); err != nil {
			return nil, err
		}
		if r.LastSample, err = time.Parse(time.RFC3339Nano, lastSample); err != nil {
			return nil, err
		}
		r.Leq = nullableLevel(leq)
		r.L90 = nullableLevel(l90)
		r.Lmax = nullableLevel(lmax)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// levelValue maps NaN to NULL, since SQLite REAL cannot hold NaN.
func levelValue(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func nullableLevel(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
