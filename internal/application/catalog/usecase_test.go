package catalog_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sync/internal/application/catalog"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

type fixedWarehouse int64

func (w fixedWarehouse) CurrentWarehouse() (int64, bool) { return int64(w), w != 0 }

type fakeProducts struct{ list []entity.Product }

func (f fakeProducts) LoadProducts(context.Context) ([]entity.Product, error) { return f.list, nil }

type fakeGateway struct {
	categories  []entity.Category
	logs        []entity.StockLog
	askedFor    int64
	createdName string
	createdIn   int64
	deleted     []int64
}

func (g *fakeGateway) FetchCategories(_ context.Context, warehouseID int64) ([]entity.Category, error) {
	g.askedFor = warehouseID
	return g.categories, nil
}

func (g *fakeGateway) CreateCategory(_ context.Context, name string, warehouseID int64) (*entity.Category, error) {
	g.createdName, g.createdIn = name, warehouseID
	return &entity.Category{ID: 77, Name: name, WarehouseID: warehouseID}, nil
}

func (g *fakeGateway) DeleteCategory(_ context.Context, id int64) error {
	g.deleted = append(g.deleted, id)
	return nil
}

func (g *fakeGateway) FetchStockLogs(context.Context) ([]entity.StockLog, error) { return g.logs, nil }

func newUseCase(gw *fakeGateway, wh int64) *catalog.UseCase {
	return catalog.NewUseCase(fakeProducts{list: []entity.Product{{ID: 1, Name: "Tornillo"}}}, gw, fixedWarehouse(wh), zerolog.Nop())
}

func TestListCategories_BodegaActiva(t *testing.T) {
	gw := &fakeGateway{categories: []entity.Category{
		{ID: 1, Name: "Ferretería", WarehouseID: 7},
		{ID: 2, Name: "Pinturas", WarehouseID: 9},
		{ID: 3, Name: "General"},
	}}
	list, err := newUseCase(gw, 7).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), gw.askedFor)
	require.Len(t, list, 2)
	assert.Equal(t, "Ferretería", list[0].Name)
	assert.Equal(t, "General", list[1].Name)
}

func TestListCategories_SinBodegaTraeTodas(t *testing.T) {
	gw := &fakeGateway{categories: []entity.Category{{ID: 1, WarehouseID: 7}, {ID: 2, WarehouseID: 9}}}
	list, err := newUseCase(gw, 0).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Zero(t, gw.askedFor)
	assert.Len(t, list, 2)
}

func TestCreateCategory(t *testing.T) {
	gw := &fakeGateway{}
	c, err := newUseCase(gw, 7).CreateCategory(context.Background(), "  Jardín  ")
	require.NoError(t, err)
	assert.Equal(t, "Jardín", gw.createdName)
	assert.Equal(t, int64(7), gw.createdIn)
	assert.Equal(t, int64(77), c.ID)
}

func TestCreateCategory_NombreVacio(t *testing.T) {
	gw := &fakeGateway{}
	_, err := newUseCase(gw, 7).CreateCategory(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.createdName)
}

func TestCreateCategory_SinBodega(t *testing.T) {
	_, err := newUseCase(&fakeGateway{}, 0).CreateCategory(context.Background(), "Jardín")
	assert.ErrorIs(t, err, domain.ErrNoActiveWarehouse)
}

func TestDeleteCategory(t *testing.T) {
	gw := &fakeGateway{}
	uc := newUseCase(gw, 7)
	require.NoError(t, uc.DeleteCategory(context.Background(), 4))
	assert.Equal(t, []int64{4}, gw.deleted)
	assert.ErrorIs(t, uc.DeleteCategory(context.Background(), 0), domain.ErrValidation)
}

func TestListStockLogs_FiltraBodega(t *testing.T) {
	gw := &fakeGateway{logs: []entity.StockLog{
		{ID: 1, WarehouseID: 7, ActionType: entity.StockActionInbound},
		{ID: 2, WarehouseID: 9},
	}}
	list, err := newUseCase(gw, 7).ListStockLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)
}

func TestListProducts(t *testing.T) {
	list, err := newUseCase(&fakeGateway{}, 7).ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
