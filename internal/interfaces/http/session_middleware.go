package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/application/session"
)

// Locals keys con la identidad de la sesión para los handlers.
const (
	LocalUserID      = "user_id"
	LocalWarehouseID = "warehouse_id"
)

// RequireSession exige una sesión autenticada en el Session Store y carga usuario y bodega a c.Locals.
// El token de catálogo nunca viaja por la API local: la sesión es la del proceso.
func RequireSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := store.Current()
		if !sess.Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "inicie sesión primero"})
		}
		c.Locals(LocalUserID, sess.User.ID)
		if sess.HasWarehouse() {
			c.Locals(LocalWarehouseID, sess.WarehouseID)
		}
		return c.Next()
	}
}

// RequireWarehouse exige bodega activa. Debe usarse DESPUÉS de RequireSession.
func RequireWarehouse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetWarehouseID(c) == 0 {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "NO_ACTIVE_WAREHOUSE",
				Message: "la sesión no tiene bodega activa",
			})
		}
		return c.Next()
	}
}

// GetUserID devuelve el id del operador (después de RequireSession).
func GetUserID(c *fiber.Ctx) int64 {
	v, _ := c.Locals(LocalUserID).(int64)
	return v
}

// GetWarehouseID devuelve la bodega activa o 0 (después de RequireSession).
func GetWarehouseID(c *fiber.Ctx) int64 {
	v, _ := c.Locals(LocalWarehouseID).(int64)
	return v
}
