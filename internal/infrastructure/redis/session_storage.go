// Package redis almacenamiento de la sesión en Redis (terminales que comparten servidor).
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.SessionStorage = (*SessionStorage)(nil)

// Connect inicializa un cliente desde una URL redis:// o host:port y verifica la conexión.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// SessionStorage claves con prefijo, sin expiración (la sesión vive hasta logout).
type SessionStorage struct {
	client *redis.Client
	prefix string
}

// NewSessionStorage envuelve un cliente existente.
func NewSessionStorage(client *redis.Client, prefix string) *SessionStorage {
	return &SessionStorage{client: client, prefix: prefix}
}

func (s *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: leer %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: escribir %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis: borrar %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) Close() error { return s.client.Close() }
