package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sync/internal/application/catalog"
	"github.com/jhoicas/inventario-sync/internal/application/dto"
)

// CatalogHandler datos de referencia: productos, categorías y bitácora de stock.
type CatalogHandler struct {
	uc   *catalog.UseCase
	resp *responder
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase, resp *responder) *CatalogHandler {
	return &CatalogHandler{uc: uc, resp: resp}
}

func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	list, err := h.uc.ListProducts(c.Context())
	if err != nil {
		return h.resp.fail(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductFromEntity(p))
	}
	return c.JSON(out)
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	list, err := h.uc.ListCategories(c.Context())
	if err != nil {
		return h.resp.fail(c, err)
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, cat := range list {
		out = append(out, dto.CategoryFromEntity(cat))
	}
	return c.JSON(out)
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cat, err := h.uc.CreateCategory(c.Context(), in.Name)
	if err != nil {
		return h.resp.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CategoryFromEntity(*cat))
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.resp.fail(c, err)
	}
	if err := h.uc.DeleteCategory(c.Context(), id); err != nil {
		return h.resp.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) ListStockLogs(c *fiber.Ctx) error {
	list, err := h.uc.ListStockLogs(c.Context())
	if err != nil {
		return h.resp.fail(c, err)
	}
	out := make([]dto.StockLogResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.StockLogFromEntity(l))
	}
	return c.JSON(out)
}
