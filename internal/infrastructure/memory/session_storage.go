package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.SessionStorage = (*SessionStorage)(nil)

// SessionStorage almacenamiento en memoria; no sobrevive al proceso.
type SessionStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSessionStorage construye un almacenamiento vacío.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{values: make(map[string]string)}
}

func (s *SessionStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *SessionStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *SessionStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len número de claves guardadas.
func (s *SessionStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *SessionStorage) Close() error { return nil }
