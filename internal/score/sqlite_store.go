/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package score

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(filePath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, err
	}
	// One connection keeps increments serialised without busy retries.
	db.SetMaxOpenConns(1)

	st := &SQLiteStore{db: db}
	if err := st.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, player string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx, `SELECT score FROM scores WHERE player_id = ?`, player).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return score, nil
}

func (s *SQLiteStore) Set(ctx context.Context, player string, score int) error {
	if score < 0 {
		return ErrNegativeScore
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (player_id, score, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET score = excluded.score, updated_at = excluded.updated_at`,
		player,
		score,
		toTS(time.Now()),
	)
	return err
}

func (s *SQLiteStore) Increment(ctx context.Context, player string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO scores (player_id, score, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(player_id) DO UPDATE SET score = score + 1, updated_at = excluded.updated_at
		RETURNING score`,
		player,
		toTS(time.Now()),
	).Scan(&score)
	if err != nil {
		return 0, err
	}
	return score, nil
}

func (s *SQLiteStore) Reset(ctx context.Context, player string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scores WHERE player_id = ?`, player)
	return err
}

func (s *SQLiteStore) SaveFinal(ctx context.Context, player string, final Final) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO finals
		(player_id, score, correct, target, answered, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		player,
		final.Score,
		final.Correct,
		final.Target,
		final.Answered,
		toTS(final.At),
	)
	return err
}

func (s *SQLiteStore) Final(ctx context.Context, player string) (Final, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT score, correct, target, answered, finished_at
		FROM finals
		WHERE player_id = ?`,
		player,
	)

	var (
		final      Final
		finishedAt string
	)
	if err := row.Scan(&final.Score, &final.Correct, &final.Target, &final.Answered, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Final{}, false, nil
		}
		return Final{}, false, err
	}
	final.At = fromTS(finishedAt)
	return final, true, nil
}

func (s *SQLiteStore) ClearFinal(ctx context.Context, player string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM finals WHERE player_id = ?`, player)
	return err
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		PRAGMA journal_mode=WAL;
		CREATE TABLE IF NOT EXISTS scores (
			player_id TEXT PRIMARY KEY,
			score INTEGER NOT NULL CHECK (score >= 0),
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS finals (
			player_id TEXT PRIMARY KEY,
			score INTEGER NOT NULL,
			correct INTEGER NOT NULL DEFAULT 0,
			target INTEGER NOT NULL,
			answered INTEGER NOT NULL,
			finished_at TEXT NOT NULL
		);
	`)
	return err
}

func toTS(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fromTS(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
