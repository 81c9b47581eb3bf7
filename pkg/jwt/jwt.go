package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims claims estándar más los campos que el servicio de catálogo puede incluir en sus tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64  `json:"user_id,omitempty"`
	Username    string `json:"username,omitempty"`
	WarehouseID int64  `json:"warehouse_id,omitempty"`
}

// Inspect lee los claims SIN verificar la firma: el cliente no conoce el secreto del servidor,
// solo quiere saber si un token guardado ya expiró antes de usarlo.
// ok=false si el token no tiene forma de JWT (p. ej. tokens opacos de DRF).
func Inspect(tokenString string) (claims *Claims, ok bool) {
	c := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, c); err != nil {
		return nil, false
	}
	return c, true
}

// Expired indica si el token tiene forma de JWT y su exp ya pasó respecto a now.
// Tokens opacos o sin exp nunca se consideran expirados.
func Expired(tokenString string, now time.Time) bool {
	c, ok := Inspect(tokenString)
	if !ok || c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.Time.After(now)
}
