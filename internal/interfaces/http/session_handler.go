package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/application/inventory"
	"github.com/jhoicas/inventario-sync/internal/application/session"
)

// SessionHandler login, logout y cambio de bodega.
type SessionHandler struct {
	store *session.Store
	repo  *inventory.Repository
	resp  *responder
}

// NewSessionHandler construye el handler.
func NewSessionHandler(store *session.Store, repo *inventory.Repository, resp *responder) *SessionHandler {
	return &SessionHandler{store: store, repo: repo, resp: resp}
}

// Login autentica y, si la sesión trae bodega, carga su inventario.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sess, err := h.store.Login(c.Context(), in.Username, in.Password)
	if err != nil {
		return h.resp.fail(c, err)
	}
	// identidad nueva: nada del caché anterior sobrevive
	h.repo.Reset()
	if sess.HasWarehouse() {
		if warning := h.resp.refreshAfter(c); warning != "" {
			c.Set("X-Warning", warning)
		}
	}
	return c.JSON(dto.SessionFromEntity(sess))
}

// Logout cierra la sesión (con aviso de revocación si está configurado) y vacía el caché.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.store.Logout(c.Context())
	h.repo.Reset()
	return c.JSON(dto.MessageResponse{Message: "sesión cerrada"})
}

// Current estado de la sesión; nunca falla.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	return c.JSON(dto.SessionFromEntity(h.store.Current()))
}

// SwitchWarehouse cambia la bodega activa y recarga el inventario de la nueva bodega.
func (h *SessionHandler) SwitchWarehouse(c *fiber.Ctx) error {
	var in dto.SwitchWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sess, err := h.store.SwitchWarehouse(c.Context(), in.WarehouseID)
	if err != nil {
		return h.resp.fail(c, err)
	}
	if warning := h.resp.refreshAfter(c); warning != "" {
		c.Set("X-Warning", warning)
	}
	return c.JSON(dto.SessionFromEntity(sess))
}
