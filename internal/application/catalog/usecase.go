// Package catalog casos de uso de datos de referencia: productos, categorías y bitácora de stock.
package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// ProductLoader carga productos y actualiza el índice del repositorio de inventario.
type ProductLoader interface {
	LoadProducts(ctx context.Context) ([]entity.Product, error)
}

// Gateway parte del servicio de catálogo usada aquí.
type Gateway interface {
	FetchCategories(ctx context.Context, warehouseID int64) ([]entity.Category, error)
	CreateCategory(ctx context.Context, name string, warehouseID int64) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	FetchStockLogs(ctx context.Context) ([]entity.StockLog, error)
}

// WarehouseSource bodega activa de la sesión.
type WarehouseSource interface {
	CurrentWarehouse() (int64, bool)
}

// UseCase productos, categorías y bitácora para la bodega activa.
type UseCase struct {
	products   ProductLoader
	gw         Gateway
	warehouses WarehouseSource
	log        zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(products ProductLoader, gw Gateway, warehouses WarehouseSource, log zerolog.Logger) *UseCase {
	return &UseCase{
		products:   products,
		gw:         gw,
		warehouses: warehouses,
		log:        log.With().Str("component", "catalog").Logger(),
	}
}

// ListProducts productos disponibles para "seleccionar existente".
func (uc *UseCase) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return uc.products.LoadProducts(ctx)
}

// ListCategories categorías de la bodega activa; sin bodega, todas las visibles.
func (uc *UseCase) ListCategories(ctx context.Context) ([]entity.Category, error) {
	active, ok := uc.warehouses.CurrentWarehouse()
	if !ok {
		return uc.gw.FetchCategories(ctx, 0)
	}
	list, err := uc.gw.FetchCategories(ctx, active)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Category, 0, len(list))
	for _, c := range list {
		if c.WarehouseID == active || c.WarehouseID == 0 {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreateCategory crea una categoría en la bodega activa. El nombre se recorta y no puede quedar vacío.
func (uc *UseCase) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	active, ok := uc.warehouses.CurrentWarehouse()
	if !ok {
		return nil, domain.ErrNoActiveWarehouse
	}
	c, err := uc.gw.CreateCategory(ctx, name, active)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("category_id", c.ID).Str("name", c.Name).Msg("categoría creada")
	return c, nil
}

// DeleteCategory borra una categoría.
func (uc *UseCase) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.Invalid("id", "debe ser un entero positivo")
	}
	return uc.gw.DeleteCategory(ctx, id)
}

// ListStockLogs bitácora de movimientos de la bodega activa.
func (uc *UseCase) ListStockLogs(ctx context.Context) ([]entity.StockLog, error) {
	list, err := uc.gw.FetchStockLogs(ctx)
	if err != nil {
		return nil, err
	}
	active, ok := uc.warehouses.CurrentWarehouse()
	if !ok {
		return list, nil
	}
	out := make([]entity.StockLog, 0, len(list))
	for _, l := range list {
		if l.WarehouseID == active {
			out = append(out, l)
		}
	}
	return out, nil
}
