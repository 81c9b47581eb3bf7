package dto

import "github.com/jhoicas/inventario-sync/internal/domain/entity"

// LoginRequest credenciales del operador.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SwitchWarehouseRequest bodega a activar.
type SwitchWarehouseRequest struct {
	WarehouseID int64 `json:"warehouse_id"`
}

// UserResponse operador autenticado.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// SessionResponse estado de la sesión. El token nunca sale por la API local.
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
	WarehouseID   *int64        `json:"warehouse_id"`
	WarehouseName string        `json:"warehouse_name,omitempty"`
}

// SessionFromEntity mapea la sesión sin exponer el token.
func SessionFromEntity(s entity.Session) SessionResponse {
	out := SessionResponse{Authenticated: s.Authenticated()}
	if s.User != nil {
		out.User = &UserResponse{ID: s.User.ID, Username: s.User.Username, Email: s.User.Email, Role: s.User.Role}
	}
	if s.HasWarehouse() {
		id := s.WarehouseID
		out.WarehouseID = &id
		out.WarehouseName = s.WarehouseName
	}
	return out
}
