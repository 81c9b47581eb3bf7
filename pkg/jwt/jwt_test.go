package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sync/pkg/jwt"
)

func sign(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(exp)},
		Username:         "alice",
		WarehouseID:      7,
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("otro-secreto"))
	require.NoError(t, err)
	return tok
}

func TestInspect_SinVerificarFirma(t *testing.T) {
	c, ok := jwt.Inspect(sign(t, time.Now().Add(time.Hour)))
	require.True(t, ok)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, int64(7), c.WarehouseID)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, jwt.Expired(sign(t, now.Add(time.Hour)), now))
	assert.True(t, jwt.Expired(sign(t, now.Add(-time.Minute)), now))
	assert.False(t, jwt.Expired("9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b", now), "token opaco")
}
