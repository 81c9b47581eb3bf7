package http

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/application/inventory"
	"github.com/jhoicas/inventario-sync/internal/application/view"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// maxImageBytes límite de la imagen opcional del producto.
const maxImageBytes = 5 << 20

// InventoryHandler vista y mutaciones del inventario de la bodega activa.
type InventoryHandler struct {
	repo      *inventory.Repository
	composite *inventory.CompositeCreateUseCase
	resp      *responder
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(repo *inventory.Repository, composite *inventory.CompositeCreateUseCase, resp *responder) *InventoryHandler {
	return &InventoryHandler{repo: repo, composite: composite, resp: resp}
}

// List devuelve la vista proyectada del caché. ?refresh=true recarga antes de proyectar.
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	q, err := parseViewQuery(c)
	if err != nil {
		return h.resp.fail(c, err)
	}
	if c.QueryBool("refresh") {
		if err := h.repo.Refresh(c.Context()); err != nil {
			return h.resp.fail(c, err)
		}
	}
	records := view.Project(h.repo.Snapshot(), q)
	return c.JSON(h.listResponse(records))
}

// Refresh recarga el inventario de la bodega activa.
func (h *InventoryHandler) Refresh(c *fiber.Ctx) error {
	if err := h.repo.Refresh(c.Context()); err != nil {
		return h.resp.fail(c, err)
	}
	return c.JSON(h.listResponse(view.Project(h.repo.Snapshot(), view.Query{})))
}

// Create registra stock de un producto existente en la bodega activa.
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Quantity == nil {
		return h.resp.fail(c, domain.Invalid("quantity", "requerido"))
	}
	if *in.Quantity >= 0 && in.ProductID > 0 {
		if _, known := h.repo.Product(in.ProductID); !known {
			// tras un reinicio el índice solo conoce los productos del inventario cargado
			if _, err := h.repo.LoadProducts(c.Context()); err != nil {
				return h.resp.fail(c, err)
			}
		}
	}
	rec, err := h.repo.Create(c.Context(), in.ProductID, *in.Quantity)
	if err != nil {
		return h.resp.fail(c, err)
	}
	if warning := h.resp.refreshAfter(c); warning != "" {
		c.Set("X-Warning", warning)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordFromEntity(rec, false))
}

// CreateWithProduct crea el producto (multipart, imagen opcional) y luego su stock inicial.
func (h *InventoryHandler) CreateWithProduct(c *fiber.Ctx) error {
	in, err := compositeFromForm(c)
	if err != nil {
		return h.resp.fail(c, err)
	}
	image, err := formImage(c)
	if err != nil {
		return h.resp.fail(c, err)
	}
	res, err := h.composite.Execute(c.Context(), inventory.CompositeCreateInput{
		Name:        in.Name,
		SKU:         in.SKU,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Quantity:    *in.Quantity,
		Image:       image,
	})
	if err != nil {
		return h.resp.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CompositeCreateResponse{
		Product: dto.ProductFromEntity(res.Product),
		Record:  dto.RecordFromEntity(res.Record, false),
		Warning: h.resp.refreshAfter(c),
	})
}

// BeginEdit abre el borrador de un registro.
func (h *InventoryHandler) BeginEdit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.resp.fail(c, err)
	}
	es, err := h.repo.BeginEdit(id)
	if err != nil {
		return h.resp.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.EditSessionFromEntity(es))
}

// UpdateDraft cambia la cantidad del borrador sin tocar el servicio.
func (h *InventoryHandler) UpdateDraft(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.resp.fail(c, err)
	}
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Quantity == nil {
		return h.resp.fail(c, domain.Invalid("quantity", "requerido"))
	}
	es, err := h.repo.UpdateDraft(id, *in.Quantity)
	if err != nil {
		return h.resp.fail(c, err)
	}
	return c.JSON(dto.EditSessionFromEntity(es))
}

// CancelEdit descarta el borrador; idempotente.
func (h *InventoryHandler) CancelEdit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.resp.fail(c, err)
	}
	h.repo.CancelEdit(id)
	return c.SendStatus(fiber.StatusNoContent)
}

// Commit envía la cantidad (la del cuerpo o, si falta, la del borrador abierto).
func (h *InventoryHandler) Commit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.resp.fail(c, err)
	}
	var in dto.QuantityRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	var qty int
	if in.Quantity != nil {
		qty = *in.Quantity
	} else {
		es, ok := h.repo.EditSession(id)
		if !ok {
			return h.resp.fail(c, domain.Invalid("quantity", "requerido si no hay borrador abierto"))
		}
		qty = es.Draft
	}
	rec, err := h.repo.CommitEdit(c.Context(), id, qty)
	if err != nil {
		return h.resp.fail(c, err)
	}
	if warning := h.resp.refreshAfter(c); warning != "" {
		c.Set("X-Warning", warning)
	}
	return c.JSON(dto.RecordFromEntity(rec, false))
}

// Delete borra el registro en el servicio y luego del caché.
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.resp.fail(c, err)
	}
	if err := h.repo.Delete(c.Context(), id); err != nil {
		return h.resp.fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "registro eliminado", Warning: h.resp.refreshAfter(c)})
}

func (h *InventoryHandler) listResponse(records []entity.InventoryRecord) dto.InventoryListResponse {
	editing := make(map[int64]bool)
	for _, es := range h.repo.EditSessions() {
		editing[es.RecordID] = true
	}
	out := dto.InventoryListResponse{
		WarehouseID: h.repo.WarehouseID(),
		Records:     make([]dto.InventoryRecordResponse, 0, len(records)),
	}
	for _, r := range records {
		out.Records = append(out.Records, dto.RecordFromEntity(r, editing[r.ID]))
	}
	sum := view.Summarize(records)
	out.Total = sum.Records
	out.TotalQuantity = sum.TotalQuantity
	out.LowStock = sum.LowStock
	return out
}

// parseViewQuery lee search, category, sort y direction de la query string.
func parseViewQuery(c *fiber.Ctx) (view.Query, error) {
	q := view.Query{Search: c.Query("search")}
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return view.Query{}, domain.Invalid("category", "debe ser un entero no negativo")
		}
		q.CategoryID = id
	}
	key, err := view.ParseSortKey(c.Query("sort"))
	if err != nil {
		return view.Query{}, err
	}
	dir, err := view.ParseDirection(c.Query("direction"))
	if err != nil {
		return view.Query{}, err
	}
	q.SortKey, q.Direction = key, dir
	return q, nil
}

func compositeFromForm(c *fiber.Ctx) (dto.CompositeCreateRequest, error) {
	in := dto.CompositeCreateRequest{
		Name:        c.FormValue("name"),
		SKU:         c.FormValue("sku"),
		Description: c.FormValue("description"),
	}
	if raw := strings.TrimSpace(c.FormValue("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return in, domain.Invalid("category_id", "debe ser un entero")
		}
		in.CategoryID = id
	}
	raw := strings.TrimSpace(c.FormValue("quantity"))
	if raw == "" {
		return in, domain.Invalid("quantity", "requerido")
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return in, domain.Invalid("quantity", "debe ser un entero")
	}
	in.Quantity = &qty
	return in, nil
}

// formImage lee la parte "image" si viene; su ausencia no es error.
func formImage(c *fiber.Ctx) (*entity.ProductImage, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if fh.Size > maxImageBytes {
		return nil, domain.Invalid("image", "supera 5 MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, domain.Invalid("image", "supera 5 MB")
	}
	if len(data) == 0 {
		return nil, domain.Invalid("image", "archivo vacío")
	}
	return &entity.ProductImage{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
