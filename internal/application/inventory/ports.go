package inventory

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// Gateway parte del servicio de catálogo que usa el repositorio de inventario.
// Lo implementa infrastructure/catalog.HTTPGateway.
type Gateway interface {
	FetchInventory(ctx context.Context) ([]entity.InventoryRecord, error)
	CreateInventory(ctx context.Context, in entity.InventoryWrite) (*entity.InventoryRecord, error)
	UpdateInventory(ctx context.Context, id int64, in entity.InventoryWrite) (*entity.InventoryRecord, error)
	DeleteInventory(ctx context.Context, id int64) error
	FetchProducts(ctx context.Context) ([]entity.Product, error)
}

// ProductCreator alta de productos para el flujo de creación compuesta.
type ProductCreator interface {
	CreateProduct(ctx context.Context, in entity.NewProduct, image *entity.ProductImage) (*entity.Product, error)
}

// WarehouseSource entrega la bodega activa de la sesión (session.Store).
type WarehouseSource interface {
	CurrentWarehouse() (int64, bool)
}

// CacheObserver recibe el tamaño del caché tras cada cambio (métricas). Opcional.
type CacheObserver interface {
	SetCacheSize(n int)
}
