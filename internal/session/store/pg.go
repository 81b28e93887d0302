// Package store persists sealed session blobs in PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mudkipdev/rephoton/internal/errors"
	"github.com/mudkipdev/rephoton/internal/session"
)

type PGStore struct{ pool *pgxpool.Pool }

var _ session.StorePort = (*PGStore)(nil)

func New(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	_, err = pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  blob BYTEA NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Put(ctx context.Context, token string, blob []byte) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO sessions (token, blob, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (token) DO UPDATE SET
  blob=EXCLUDED.blob, updated_at=EXCLUDED.updated_at`,
		token, blob, time.Now().UTC())
	return err
}

func (s *PGStore) Get(ctx context.Context, token string) ([]byte, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx, `SELECT blob FROM sessions WHERE token=$1`, token).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.ErrSessionNotStored
	}
	return blob, err
}

func (s *PGStore) Delete(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

// Prune deletes blobs last written before the cutoff and returns how many
// were removed.
func (s *PGStore) Prune(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PGStore) Close() { s.pool.Close() }
