package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inredis "github.com/jhoicas/inventario-sync/internal/infrastructure/redis"
)

// Requiere un Redis real; se omite si no hay uno disponible.
func newStorage(t *testing.T) *inredis.SessionStorage {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := inredis.Connect(context.Background(), addr)
	if err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	s := inredis.NewSessionStorage(client, "test:"+uuid.NewString()+":")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionStorage_CRUD(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "token", "abc"))
	v, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Delete(ctx, "token"))
	_, ok, err = s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnect_URLInvalida(t *testing.T) {
	_, err := inredis.Connect(context.Background(), "redis://:bad url")
	assert.Error(t, err)
}
