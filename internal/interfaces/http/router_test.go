package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sync/internal/application/catalog"
	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/application/export"
	"github.com/jhoicas/inventario-sync/internal/application/inventory"
	"github.com/jhoicas/inventario-sync/internal/application/session"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/tabular"
	apphttp "github.com/jhoicas/inventario-sync/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo falso en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	mu           sync.Mutex
	records      []entity.InventoryRecord
	products     map[int64]entity.Product
	nextID       int64
	creates      int
	updates      []entity.InventoryWrite
	unauthorized bool // todas las llamadas con token responden 401
	failCreate   error
}

var _ repository.CatalogGateway = (*fakeCatalog)(nil)

func newFakeCatalog() *fakeCatalog {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tornillo := entity.Product{ID: 1, SKU: "TOR-01", Name: "Tornillo", CategoryID: 3}
	tuerca := entity.Product{ID: 2, SKU: "TUE-02", Name: "Tuerca", CategoryID: 3}
	arandela := entity.Product{ID: 3, SKU: "ARA-03", Name: "Arandela", CategoryID: 4}
	rec := func(id, wh int64, p entity.Product, qty int) entity.InventoryRecord {
		pp := p
		return entity.InventoryRecord{ID: id, WarehouseID: wh, ProductID: p.ID, ProductDetails: &pp, Quantity: qty, LastUpdated: ts}
	}
	return &fakeCatalog{
		records: []entity.InventoryRecord{
			rec(10, 7, tornillo, 5),
			rec(11, 7, tuerca, 40),
			rec(12, 9, arandela, 2),
		},
		products: map[int64]entity.Product{1: tornillo, 2: tuerca, 3: arandela},
		nextID:   100,
	}
}

func (f *fakeCatalog) guard() error {
	if f.unauthorized {
		return domain.ErrUnauthorized
	}
	return nil
}

func (f *fakeCatalog) Login(_ context.Context, username, password string) (*entity.LoginResult, error) {
	if username != "ana" || password != "secreto" {
		return nil, &domain.RejectedError{Status: http.StatusBadRequest, Raw: `{"non_field_errors":["credenciales"]}`}
	}
	return &entity.LoginResult{
		Token:         "tok-ana",
		User:          entity.User{ID: 42, Username: "ana"},
		WarehouseID:   7,
		WarehouseName: "Central",
	}, nil
}

func (f *fakeCatalog) Revoke(context.Context, string) error { return nil }

func (f *fakeCatalog) GetWarehouse(_ context.Context, id int64) (*entity.Warehouse, error) {
	if err := f.guard(); err != nil {
		return nil, err
	}
	names := map[int64]string{7: "Central", 9: "Norte"}
	name, ok := names[id]
	if !ok {
		return nil, &domain.RejectedError{Status: http.StatusNotFound}
	}
	return &entity.Warehouse{ID: id, Name: name}, nil
}

func (f *fakeCatalog) FetchInventory(context.Context) ([]entity.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	out := make([]entity.InventoryRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (f *fakeCatalog) CreateInventory(_ context.Context, in entity.InventoryWrite) (*entity.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if err := f.guard(); err != nil {
		return nil, err
	}
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	f.nextID++
	p := f.products[in.ProductID]
	rec := entity.InventoryRecord{ID: f.nextID, WarehouseID: in.WarehouseID, ProductID: in.ProductID, ProductDetails: &p, Quantity: in.Quantity}
	f.records = append(f.records, rec)
	out := rec.Clone()
	return &out, nil
}

func (f *fakeCatalog) UpdateInventory(_ context.Context, id int64, in entity.InventoryWrite) (*entity.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	f.updates = append(f.updates, in)
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Quantity = in.Quantity
			out := f.records[i].Clone()
			return &out, nil
		}
	}
	return nil, &domain.RejectedError{Status: http.StatusNotFound}
}

func (f *fakeCatalog) DeleteInventory(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &domain.RejectedError{Status: http.StatusNotFound}
}

func (f *fakeCatalog) FetchProducts(context.Context) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, in entity.NewProduct, _ *entity.ProductImage) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	p := entity.Product{ID: 500, SKU: in.SKU, Name: in.Name, CategoryID: in.CategoryID, Description: in.Description}
	f.products[p.ID] = p
	return &p, nil
}

func (f *fakeCatalog) FetchCategories(context.Context, int64) ([]entity.Category, error) {
	return []entity.Category{{ID: 3, Name: "Ferretería", WarehouseID: 7}, {ID: 4, Name: "Otros", WarehouseID: 9}}, f.guard()
}

func (f *fakeCatalog) CreateCategory(_ context.Context, name string, warehouseID int64) (*entity.Category, error) {
	return &entity.Category{ID: 8, Name: name, WarehouseID: warehouseID}, f.guard()
}

func (f *fakeCatalog) DeleteCategory(context.Context, int64) error { return f.guard() }

func (f *fakeCatalog) FetchStockLogs(context.Context) ([]entity.StockLog, error) {
	return nil, f.guard()
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app   *fiber.App
	cat   *fakeCatalog
	store *session.Store
}

func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	cat := newFakeCatalog()
	log := zerolog.Nop()
	store := session.NewStore(cat, memory.NewSessionStorage(), log)
	repo := inventory.NewRepository(cat, store, log)
	pipeline := export.NewPipeline(export.DefaultOptions(), nil, log, tabular.CSV{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:      "inventario-sync-test",
		Session:      store,
		Inventory:    repo,
		Composite:    inventory.NewCompositeCreateUseCase(cat, repo, log),
		Catalog:      catalog.NewUseCase(repo, cat, store, log),
		Export:       pipeline,
		ExportFormat: "csv",
		Log:          log,
	})
	return &testEnv{app: app, cat: cat, store: store}
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func login(t *testing.T, env *testEnv) {
	t.Helper()
	resp := doRequest(t, env.app, http.MethodPost, "/api/session/login", dto.LoginRequest{Username: "ana", Password: "secreto"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_SinSesion_Retorna401(t *testing.T) {
	env := buildTestApp(t)
	resp := doRequest(t, env.app, http.MethodGet, "/api/inventory", nil)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", body.Code)
}

func TestRouter_LoginCargaInventarioDeLaBodega(t *testing.T) {
	env := buildTestApp(t)
	resp := doRequest(t, env.app, http.MethodPost, "/api/session/login", dto.LoginRequest{Username: "ana", Password: "secreto"})
	sess := decode[dto.SessionResponse](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, sess.Authenticated)
	require.NotNil(t, sess.WarehouseID)
	assert.Equal(t, int64(7), *sess.WarehouseID)

	list := decode[dto.InventoryListResponse](t, doRequest(t, env.app, http.MethodGet, "/api/inventory", nil))
	assert.Equal(t, int64(7), list.WarehouseID)
	require.Len(t, list.Records, 2, "solo los registros de la bodega 7")
	for _, r := range list.Records {
		assert.Equal(t, int64(7), r.WarehouseID)
	}
	assert.Equal(t, 45, list.TotalQuantity)
	assert.Equal(t, 1, list.LowStock)
}

func TestRouter_LoginFallido_NoTocaLaSesion(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	resp := doRequest(t, env.app, http.MethodPost, "/api/session/login", dto.LoginRequest{Username: "ana", Password: "mala"})
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_FAILED", body.Code)
	assert.True(t, env.store.Current().Authenticated(), "la sesión previa sigue activa")
}

func TestRouter_OrdenPorCantidadDescendente(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	list := decode[dto.InventoryListResponse](t, doRequest(t, env.app, http.MethodGet, "/api/inventory?sort=quantity&direction=desc", nil))
	require.Len(t, list.Records, 2)
	assert.Equal(t, 40, list.Records[0].Quantity)
	assert.Equal(t, 5, list.Records[1].Quantity)

	resp := doRequest(t, env.app, http.MethodGet, "/api/inventory?sort=precio", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_CantidadNegativa_SinLlamadaAlServicio(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	resp := doRequest(t, env.app, http.MethodPost, "/api/inventory", dto.CreateInventoryRequest{ProductID: 1, Quantity: ptr(-1)})
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, 0, env.cat.creates)
}

func TestRouter_CreateProductoFueraDelIndiceLoCarga(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	// la arandela solo tiene stock en la bodega 9: el índice local aún no la conoce
	resp := doRequest(t, env.app, http.MethodPost, "/api/inventory", dto.CreateInventoryRequest{ProductID: 3, Quantity: ptr(4)})
	rec := decode[dto.InventoryRecordResponse](t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(7), rec.WarehouseID)
	assert.Equal(t, int64(3), rec.ProductID)
	assert.Equal(t, 1, env.cat.creates)
}

func TestRequireSession_CargaIdentidad(t *testing.T) {
	store := session.NewStore(newFakeCatalog(), memory.NewSessionStorage(), zerolog.Nop())
	_, err := store.Login(context.Background(), "ana", "secreto")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/yo", apphttp.RequireSession(store), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "warehouse_id": apphttp.GetWarehouseID(c)})
	})
	body := decode[map[string]int64](t, doRequest(t, app, http.MethodGet, "/yo", nil))
	assert.Equal(t, int64(42), body["user_id"])
	assert.Equal(t, int64(7), body["warehouse_id"])
}

func TestRouter_FlujoDeEdicion(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	resp := doRequest(t, env.app, http.MethodPost, "/api/inventory/10/edit", nil)
	es := decode[dto.EditSessionResponse](t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 5, es.OriginalQuantity)

	resp = doRequest(t, env.app, http.MethodPost, "/api/inventory/10/edit", nil)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_EDITING", body.Code)

	resp = doRequest(t, env.app, http.MethodPatch, "/api/inventory/10/edit", dto.QuantityRequest{Quantity: ptr(12)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// sin cuerpo: se confirma el borrador
	resp = doRequest(t, env.app, http.MethodPost, "/api/inventory/10/commit", nil)
	rec := decode[dto.InventoryRecordResponse](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12, rec.Quantity)
	require.Len(t, env.cat.updates, 1)
	assert.Equal(t, entity.InventoryWrite{WarehouseID: 7, ProductID: 1, Quantity: 12}, env.cat.updates[0])

	list := decode[dto.InventoryListResponse](t, doRequest(t, env.app, http.MethodGet, "/api/inventory", nil))
	for _, r := range list.Records {
		assert.False(t, r.Editing, "la edición se cerró al confirmar")
	}
}

func TestRouter_UnauthorizedInvalidaLaSesion(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)
	env.cat.unauthorized = true

	resp := doRequest(t, env.app, http.MethodPost, "/api/inventory/refresh", nil)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.False(t, env.store.Current().Authenticated())

	resp = doRequest(t, env.app, http.MethodGet, "/api/inventory", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_CreacionCompuestaParcial(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)
	env.cat.failCreate = &domain.RejectedError{Status: http.StatusBadRequest, Details: map[string]any{"quantity": "inválida"}}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Clavo"))
	require.NoError(t, w.WriteField("sku", "CLA-09"))
	require.NoError(t, w.WriteField("category_id", "3"))
	require.NoError(t, w.WriteField("quantity", "4"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/with-product", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	body := decode[dto.ErrorResponse](t, resp)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "PARTIAL_CREATION", body.Code)
	assert.EqualValues(t, 500, body.Details["product_id"])
}

func TestRouter_CambioDeBodega(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	resp := doRequest(t, env.app, http.MethodPut, "/api/session/warehouse", dto.SwitchWarehouseRequest{WarehouseID: 9})
	sess := decode[dto.SessionResponse](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Norte", sess.WarehouseName)

	list := decode[dto.InventoryListResponse](t, doRequest(t, env.app, http.MethodGet, "/api/inventory", nil))
	require.Len(t, list.Records, 1)
	assert.Equal(t, int64(12), list.Records[0].ID)
}

func TestRouter_ExportCSV(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	resp := doRequest(t, env.app, http.MethodGet, "/api/inventory/export?format=csv&search=tuer", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory_warehouse_7.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2, "cabecera más el registro filtrado")
	assert.Contains(t, lines[1], "TUE-02")
}

func TestRouter_ExportGuardarSinSink(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	resp := doRequest(t, env.app, http.MethodPost, "/api/inventory/export", nil)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestRouter_LogoutVaciaElCache(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	resp := doRequest(t, env.app, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	health := decode[map[string]any](t, doRequest(t, env.app, http.MethodGet, "/health", nil))
	assert.Equal(t, false, health["authenticated"])
	assert.EqualValues(t, 0, health["cached"])
}

func TestRouter_Categorias(t *testing.T) {
	env := buildTestApp(t)
	login(t, env)

	cats := decode[[]dto.CategoryResponse](t, doRequest(t, env.app, http.MethodGet, "/api/categories", nil))
	require.Len(t, cats, 1, "solo las de la bodega activa")
	assert.Equal(t, "Ferretería", cats[0].Name)

	resp := doRequest(t, env.app, http.MethodPost, "/api/categories", dto.CreateCategoryRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, env.app, http.MethodPost, "/api/categories", dto.CreateCategoryRequest{Name: " Pinturas "})
	cat := decode[dto.CategoryResponse](t, resp)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Pinturas", cat.Name)
	assert.Equal(t, int64(7), cat.WarehouseID)
}
