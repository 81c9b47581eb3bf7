package dto

import (
	"time"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// CreateInventoryRequest registro nuevo para un producto existente en la bodega activa.
type CreateInventoryRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

// QuantityRequest cuerpo de PATCH de borrador y de commit.
type QuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CompositeCreateRequest campos de formulario de POST /api/inventory/with-product.
type CompositeCreateRequest struct {
	Name        string `form:"name" json:"name"`
	SKU         string `form:"sku" json:"sku"`
	CategoryID  int64  `form:"category_id" json:"category_id"`
	Description string `form:"description" json:"description"`
	Quantity    *int   `form:"quantity" json:"quantity"`
}

// CategoryResponse categoría de productos.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	WarehouseID int64  `json:"warehouse_id,omitempty"`
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID          int64             `json:"id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	CategoryID  int64             `json:"category_id"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Image       string            `json:"image,omitempty"`
}

// InventoryRecordResponse fila de la vista de inventario.
type InventoryRecordResponse struct {
	ID          int64            `json:"id"`
	WarehouseID int64            `json:"warehouse_id"`
	ProductID   int64            `json:"product_id"`
	Product     *ProductResponse `json:"product,omitempty"`
	Quantity    int              `json:"quantity"`
	LowStock    bool             `json:"low_stock"`
	LastUpdated time.Time        `json:"last_updated"`
	Editing     bool             `json:"editing"`
}

// InventoryListResponse vista proyectada más el resumen.
type InventoryListResponse struct {
	WarehouseID   int64                     `json:"warehouse_id"`
	Records       []InventoryRecordResponse `json:"records"`
	Total         int                       `json:"total"`
	TotalQuantity int                       `json:"total_quantity"`
	LowStock      int                       `json:"low_stock"`
}

// EditSessionResponse borrador abierto de un registro.
type EditSessionResponse struct {
	ID               string    `json:"id"`
	RecordID         int64     `json:"record_id"`
	OriginalQuantity int       `json:"original_quantity"`
	Draft            int       `json:"draft"`
	StartedAt        time.Time `json:"started_at"`
}

// CompositeCreateResponse producto y registro creados.
type CompositeCreateResponse struct {
	Product ProductResponse         `json:"product"`
	Record  InventoryRecordResponse `json:"record"`
	Warning string                  `json:"warning,omitempty"`
}

// StockLogResponse entrada de la bitácora de stock.
type StockLogResponse struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	WarehouseID    int64     `json:"warehouse_id"`
	UserID         int64     `json:"user_id"`
	ActionType     string    `json:"action_type"`
	QuantityChange int       `json:"quantity_change"`
	Timestamp      time.Time `json:"timestamp"`
}

// CreateCategoryRequest nombre de la categoría nueva (se asocia a la bodega activa).
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// ExportSavedResponse ubicación del archivo guardado por el sink configurado.
type ExportSavedResponse struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Format   string `json:"format"`
	Records  int    `json:"records"`
}

// CategoryFromEntity mapea una categoría.
func CategoryFromEntity(c entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, WarehouseID: c.WarehouseID}
}

// ProductFromEntity mapea un producto.
func ProductFromEntity(p entity.Product) ProductResponse {
	out := ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Image:       p.ImageRef,
	}
	if p.Category != nil {
		c := CategoryFromEntity(*p.Category)
		out.Category = &c
	}
	return out
}

// RecordFromEntity mapea un registro; editing indica si tiene una sesión de edición abierta.
func RecordFromEntity(r entity.InventoryRecord, editing bool) InventoryRecordResponse {
	out := InventoryRecordResponse{
		ID:          r.ID,
		WarehouseID: r.WarehouseID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		LowStock:    r.LowStock(),
		LastUpdated: r.LastUpdated,
		Editing:     editing,
	}
	if r.ProductDetails != nil {
		p := ProductFromEntity(*r.ProductDetails)
		out.Product = &p
	}
	return out
}

// EditSessionFromEntity mapea un borrador.
func EditSessionFromEntity(e entity.EditSession) EditSessionResponse {
	return EditSessionResponse{
		ID:               e.ID,
		RecordID:         e.RecordID,
		OriginalQuantity: e.OriginalQuantity,
		Draft:            e.Draft,
		StartedAt:        e.StartedAt,
	}
}

// StockLogFromEntity mapea una entrada de bitácora.
func StockLogFromEntity(l entity.StockLog) StockLogResponse {
	return StockLogResponse{
		ID:             l.ID,
		ProductID:      l.ProductID,
		WarehouseID:    l.WarehouseID,
		UserID:         l.UserID,
		ActionType:     l.ActionType,
		QuantityChange: l.QuantityChange,
		Timestamp:      l.Timestamp,
	}
}
