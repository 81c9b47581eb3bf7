package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// ── Estructuras del contrato REST del servicio de catálogo ────────────────────

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token         string  `json:"token"`
	UserID        int64   `json:"user_id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Role          *string `json:"role"`
	WarehouseID   *int64  `json:"warehouse_id"`
	WarehouseName *string `json:"warehouse_name"`
}

type warehouseDTO struct {
	WarehouseID int64  `json:"warehouse_id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
}

type categoryDTO struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Warehouse  *int64 `json:"warehouse"`
}

type categoryWrite struct {
	Name      string `json:"name"`
	Warehouse int64  `json:"warehouse"`
}

type productDTO struct {
	ProductID       int64        `json:"product_id"`
	Name            string       `json:"name"`
	SKU             string       `json:"sku"`
	Category        int64        `json:"category"`
	CategoryDetails *categoryDTO `json:"category_details"`
	Description     *string      `json:"description"`
	Image           *string      `json:"image"`
}

type inventoryDTO struct {
	InventoryID    int64       `json:"inventory_id"`
	Warehouse      int64       `json:"warehouse"`
	Product        int64       `json:"product"`
	ProductDetails *productDTO `json:"product_details"`
	Quantity       int         `json:"quantity"`
	LastUpdated    time.Time   `json:"last_updated"`
}

// inventoryWrite el servicio exige los tres campos en cada escritura (POST y PUT).
type inventoryWrite struct {
	Warehouse int64 `json:"warehouse"`
	Product   int64 `json:"product"`
	Quantity  int   `json:"quantity"`
}

type stockLogDTO struct {
	LogID          int64     `json:"log_id"`
	Product        int64     `json:"product"`
	Warehouse      int64     `json:"warehouse"`
	User           int64     `json:"user"`
	ActionType     string    `json:"action_type"`
	QuantityChange int       `json:"quantity_change"`
	Timestamp      time.Time `json:"timestamp"`
}

// paginated forma de respuesta cuando el servicio tiene la paginación activada.
type paginated[T any] struct {
	Results []T `json:"results"`
}

// decodeList acepta tanto una lista plana como una página {"results": [...]}.
func decodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var page paginated[T]
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, err
		}
		return page.Results, nil
	}
	var list []T
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ── Mapeo a entidades ─────────────────────────────────────────────────────────

func (d loginResponse) toEntity() *entity.LoginResult {
	res := &entity.LoginResult{
		Token: d.Token,
		User:  entity.User{ID: d.UserID, Username: d.Username, Email: d.Email},
	}
	if d.Role != nil {
		res.User.Role = *d.Role
	}
	if d.WarehouseID != nil {
		res.WarehouseID = *d.WarehouseID
	}
	if d.WarehouseName != nil {
		res.WarehouseName = *d.WarehouseName
	}
	return res
}

func (d categoryDTO) toEntity() entity.Category {
	c := entity.Category{ID: d.CategoryID, Name: d.Name}
	if d.Warehouse != nil {
		c.WarehouseID = *d.Warehouse
	}
	return c
}

func (d productDTO) toEntity() entity.Product {
	p := entity.Product{
		ID:         d.ProductID,
		SKU:        d.SKU,
		Name:       d.Name,
		CategoryID: d.Category,
	}
	if d.CategoryDetails != nil {
		c := d.CategoryDetails.toEntity()
		p.Category = &c
	}
	if d.Description != nil {
		p.Description = *d.Description
	}
	if d.Image != nil {
		p.ImageRef = *d.Image
	}
	return p
}

func (d inventoryDTO) toEntity() entity.InventoryRecord {
	r := entity.InventoryRecord{
		ID:          d.InventoryID,
		WarehouseID: d.Warehouse,
		ProductID:   d.Product,
		Quantity:    d.Quantity,
		LastUpdated: d.LastUpdated,
	}
	if d.ProductDetails != nil {
		p := d.ProductDetails.toEntity()
		r.ProductDetails = &p
	}
	return r
}

func (d stockLogDTO) toEntity() entity.StockLog {
	return entity.StockLog{
		ID:             d.LogID,
		ProductID:      d.Product,
		WarehouseID:    d.Warehouse,
		UserID:         d.User,
		ActionType:     d.ActionType,
		QuantityChange: d.QuantityChange,
		Timestamp:      d.Timestamp,
	}
}

func mapList[D any, E any](in []D, fn func(D) E) []E {
	out := make([]E, 0, len(in))
	for _, d := range in {
		out = append(out, fn(d))
	}
	return out
}

func idPath(collection string, id int64) string {
	return fmt.Sprintf("/%s/%d/", collection, id)
}
