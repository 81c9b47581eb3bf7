package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/application/export"
	"github.com/jhoicas/inventario-sync/internal/application/inventory"
	"github.com/jhoicas/inventario-sync/internal/application/view"
)

// ExportHandler exporta la vista actual (mismos filtros que GET /api/inventory).
type ExportHandler struct {
	repo          *inventory.Repository
	pipeline      *export.Pipeline
	defaultFormat string
	resp          *responder
}

// NewExportHandler construye el handler. defaultFormat se usa si la petición no trae ?format.
func NewExportHandler(repo *inventory.Repository, pipeline *export.Pipeline, defaultFormat string, resp *responder) *ExportHandler {
	if defaultFormat == "" {
		defaultFormat = "xlsx"
	}
	return &ExportHandler{repo: repo, pipeline: pipeline, defaultFormat: defaultFormat, resp: resp}
}

// Download devuelve el archivo como adjunto.
func (h *ExportHandler) Download(c *fiber.Ctx) error {
	art, _, err := h.render(c)
	if err != nil {
		return h.resp.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, art.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", art.Name))
	return c.Send(art.Data)
}

// Save guarda el archivo en el destino configurado (directorio o S3).
func (h *ExportHandler) Save(c *fiber.Ctx) error {
	art, n, err := h.render(c)
	if err != nil {
		return h.resp.fail(c, err)
	}
	location, err := h.pipeline.Save(c.Context(), art)
	if err != nil {
		return h.resp.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ExportSavedResponse{
		Name:     art.Name,
		Location: location,
		Format:   c.Query("format", h.defaultFormat),
		Records:  n,
	})
}

func (h *ExportHandler) render(c *fiber.Ctx) (*export.Artifact, int, error) {
	q, err := parseViewQuery(c)
	if err != nil {
		return nil, 0, err
	}
	records := view.Project(h.repo.Snapshot(), q)
	art, err := h.pipeline.Render(records, GetWarehouseID(c), c.Query("format", h.defaultFormat))
	if err != nil {
		return nil, 0, err
	}
	return art, len(records), nil
}
