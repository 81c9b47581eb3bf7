package repository

import "context"

// Claves persistidas de la sesión (mismas que usa el cliente web).
const (
	KeyToken         = "token"
	KeyUser          = "user"
	KeyWarehouseID   = "warehouse_id"
	KeyWarehouseName = "warehouse_name"
)

// SessionKeys todas las claves que escribe o borra el Session Store.
var SessionKeys = []string{KeyToken, KeyUser, KeyWarehouseID, KeyWarehouseName}

// SessionStorage almacenamiento durable clave/valor para los campos de la sesión (DIP).
// La ausencia de una clave no es error: Get devuelve ok=false.
type SessionStorage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
