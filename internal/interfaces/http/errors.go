package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/application/inventory"
	"github.com/jhoicas/inventario-sync/internal/application/session"
	"github.com/jhoicas/inventario-sync/internal/domain"
)

// responder traduce errores de dominio a respuestas HTTP. Un Unauthorized del catálogo
// invalida la sesión y vacía el caché antes de responder.
type responder struct {
	store *session.Store
	repo  *inventory.Repository
	log   zerolog.Logger
}

func (r *responder) fail(c *fiber.Ctx, err error) error {
	if !errors.Is(err, domain.ErrAuth) && errors.Is(err, domain.ErrUnauthorized) {
		r.store.Invalidate(c.Context())
		r.repo.Reset()
	}
	status, body := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		r.log.Error().Err(err).Str("path", c.Path()).Int64("user_id", GetUserID(c)).Msg("petición fallida")
	}
	return c.Status(status).JSON(body)
}

// refreshAfter refresca el caché tras una mutación confirmada. Un fallo no revierte la
// mutación: se registra y se devuelve como aviso.
func (r *responder) refreshAfter(c *fiber.Ctx) string {
	err := r.repo.Refresh(c.Context())
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		r.store.Invalidate(c.Context())
		r.repo.Reset()
	}
	r.log.Warn().Err(err).Str("path", c.Path()).Int64("user_id", GetUserID(c)).Msg("refresco posterior a la mutación falló")
	return "cambio aplicado; no se pudo refrescar el inventario: " + err.Error()
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		validation *domain.ValidationError
		rejected   *domain.RejectedError
		partial    *domain.PartialCreationError
	)
	switch {
	case errors.As(err, &partial):
		return fiber.StatusBadGateway, dto.ErrorResponse{
			Code:    "PARTIAL_CREATION",
			Message: err.Error(),
			Details: map[string]any{"product_id": partial.ProductID},
		}
	case errors.Is(err, domain.ErrAuth):
		status := fiber.StatusUnauthorized
		if errors.Is(err, domain.ErrUnreachable) {
			status = fiber.StatusServiceUnavailable
		}
		return status, dto.ErrorResponse{Code: "AUTH_FAILED", Message: err.Error()}
	case errors.Is(err, domain.ErrNoActiveWarehouse):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NO_ACTIVE_WAREHOUSE", Message: err.Error()}
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: err.Error(),
			Details: map[string]any{"field": validation.Field},
		}
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyEditing):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_EDITING", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.As(err, &rejected):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{
			Code:    "REJECTED",
			Message: err.Error(),
			Details: rejected.Details,
		}
	case errors.Is(err, domain.ErrUnreachable):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "UNREACHABLE", Message: err.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// paramID lee un id positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "debe ser un entero positivo")
	}
	return id, nil
}
