// Package sqlite almacenamiento de la sesión en un archivo SQLite local (driver puro Go).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // driver "sqlite"

	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.SessionStorage = (*SessionStorage)(nil)

// SessionStorage tabla clave/valor en SQLite.
type SessionStorage struct {
	db *sql.DB
}

// Open abre (o crea) el archivo y la tabla. path == ":memory:" sirve para tests.
func Open(ctx context.Context, path string) (*SessionStorage, error) {
	if path == "" {
		path = "session.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("sqlite: crear directorios: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: abrir: %w", err)
	}
	// una sola conexión: ":memory:" es por conexión y el archivo no admite escritores concurrentes
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS session_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: crear tabla: %w", err)
	}
	return &SessionStorage{db: db}, nil
}

func (s *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: leer %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: escribir %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: borrar %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) Close() error { return s.db.Close() }
