package inventory

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// DefaultProductDescription descripción enviada cuando el operador no escribe ninguna.
const DefaultProductDescription = "Added via dashboard"

// CompositeCreateInput producto nuevo más la cantidad inicial en la bodega activa.
type CompositeCreateInput struct {
	Name        string
	SKU         string
	CategoryID  int64
	Description string
	Quantity    int
	Image       *entity.ProductImage
}

// CompositeCreateResult producto y registro creados.
type CompositeCreateResult struct {
	Product entity.Product
	Record  entity.InventoryRecord
}

// CompositeCreateUseCase "crear producto y luego darle stock" en dos pasos sin transacción
// remota. Si el segundo paso falla el producto queda creado y se informa con
// *domain.PartialCreationError; no hay rollback.
type CompositeCreateUseCase struct {
	products ProductCreator
	repo     *Repository
	log      zerolog.Logger
}

// NewCompositeCreateUseCase construye el caso de uso.
func NewCompositeCreateUseCase(products ProductCreator, repo *Repository, log zerolog.Logger) *CompositeCreateUseCase {
	return &CompositeCreateUseCase{
		products: products,
		repo:     repo,
		log:      log.With().Str("component", "composite_create").Logger(),
	}
}

// Execute valida, crea el producto y luego el registro de inventario.
func (uc *CompositeCreateUseCase) Execute(ctx context.Context, in CompositeCreateInput) (*CompositeCreateResult, error) {
	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	switch {
	case name == "":
		return nil, domain.Invalid("name", "requerido")
	case sku == "":
		return nil, domain.Invalid("sku", "requerido")
	case in.CategoryID <= 0:
		return nil, domain.Invalid("category_id", "requerido")
	case in.Quantity < 0:
		return nil, domain.Invalid("quantity", "debe ser un entero no negativo")
	}
	if _, ok := uc.repo.warehouses.CurrentWarehouse(); !ok {
		return nil, noWarehouse()
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = DefaultProductDescription
	}

	product, err := uc.products.CreateProduct(ctx, entity.NewProduct{
		Name:        name,
		SKU:         sku,
		CategoryID:  in.CategoryID,
		Description: desc,
	}, in.Image)
	if err != nil {
		return nil, err
	}
	uc.repo.AdmitProduct(*product)

	rec, err := uc.repo.Create(ctx, product.ID, in.Quantity)
	if err != nil {
		uc.log.Warn().
			Err(err).
			Int64("product_id", product.ID).
			Str("sku", product.SKU).
			Msg("producto creado sin registro de inventario")
		return nil, &domain.PartialCreationError{ProductID: product.ID, Cause: err}
	}
	return &CompositeCreateResult{Product: *product, Record: rec}, nil
}
