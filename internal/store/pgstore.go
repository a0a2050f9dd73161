package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// PgStore backs the key space with a two-column Postgres table.
type PgStore struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPgStore(db *sqlx.DB, log *logrus.Logger) (*PgStore, error) {
	s := &PgStore{db: db, log: log}
	_, err := db.ExecContext(context.Background(),
		`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now())`)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PgStore) Get(key string) (string, bool, error) {
	var v string
	err := s.db.GetContext(context.Background(), &v, `SELECT value FROM kv WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *PgStore) Set(key, value string) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = now()`,
		key, value)
	return err
}

func (s *PgStore) Remove(key string) error {
	_, err := s.db.ExecContext(context.Background(), `DELETE FROM kv WHERE key = $1`, key)
	return err
}
