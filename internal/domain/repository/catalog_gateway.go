package repository

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// TokenSource entrega el token de la sesión actual ("" si no hay sesión).
type TokenSource interface {
	Token() string
}

// CatalogGateway contrato tipado con el servicio remoto de catálogo.
// Cada llamada adjunta el token de la sesión; sin token falla con ErrUnauthenticated sin I/O.
// Errores: ErrUnauthorized (401/403), *RejectedError, *UnreachableError.
// El gateway nunca modifica la sesión.
type CatalogGateway interface {
	Login(ctx context.Context, username, password string) (*entity.LoginResult, error)
	Revoke(ctx context.Context, token string) error
	GetWarehouse(ctx context.Context, id int64) (*entity.Warehouse, error)

	FetchInventory(ctx context.Context) ([]entity.InventoryRecord, error)
	CreateInventory(ctx context.Context, in entity.InventoryWrite) (*entity.InventoryRecord, error)
	UpdateInventory(ctx context.Context, id int64, in entity.InventoryWrite) (*entity.InventoryRecord, error)
	DeleteInventory(ctx context.Context, id int64) error

	FetchProducts(ctx context.Context) ([]entity.Product, error)
	CreateProduct(ctx context.Context, in entity.NewProduct, image *entity.ProductImage) (*entity.Product, error)

	// FetchCategories warehouseID == 0 significa sin filtro.
	FetchCategories(ctx context.Context, warehouseID int64) ([]entity.Category, error)
	CreateCategory(ctx context.Context, name string, warehouseID int64) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	FetchStockLogs(ctx context.Context) ([]entity.StockLog, error)
}

// TokenFunc adapta una función a TokenSource (enlace tardío entre gateway y Session Store).
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }
