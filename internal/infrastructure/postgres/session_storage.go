package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.SessionStorage = (*SessionStorage)(nil)

// SessionStorage tabla clave/valor en PostgreSQL. namespace separa terminales que comparten base.
type SessionStorage struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewSessionStorage crea la tabla si no existe.
func NewSessionStorage(ctx context.Context, pool *pgxpool.Pool, namespace string) (*SessionStorage, error) {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS session_kv (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (namespace, key)
	)`)
	if err != nil {
		return nil, fmt.Errorf("postgres: crear session_kv: %w", err)
	}
	return &SessionStorage{pool: pool, namespace: namespace}, nil
}

func (s *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM session_kv WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: leer %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_kv (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		s.namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("postgres: escribir %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM session_kv WHERE namespace = $1 AND key = $2`, s.namespace, key)
	if err != nil {
		return fmt.Errorf("postgres: borrar %s: %w", key, err)
	}
	return nil
}

// Close cierra el pool; el storage es su único dueño.
func (s *SessionStorage) Close() error {
	s.pool.Close()
	return nil
}
