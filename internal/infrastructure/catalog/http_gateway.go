package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

// Verificar en tiempo de compilación que HTTPGateway implementa CatalogGateway.
var _ repository.CatalogGateway = (*HTTPGateway)(nil)

const (
	// DefaultAuthScheme esquema de TokenAuthentication del servicio ("Authorization: Token <key>").
	DefaultAuthScheme = "Token"

	maxResponseBytes = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

// Outcome resultado de una llamada, usado como etiqueta de métricas.
const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeUnauthorized    = "unauthorized"
	OutcomeRejected        = "rejected"
	OutcomeUnreachable     = "unreachable"
	OutcomeDecode          = "decode_error"
)

// Recorder recibe una observación por llamada al servicio (ver infrastructure/metrics).
type Recorder interface {
	ObserveCall(op, outcome string, status int, elapsed time.Duration)
}

// Config parámetros del gateway.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	AuthScheme string
	RevokePath string // vacío = el servicio no expone revocación
}

// HTTPGateway adaptador REST del servicio de catálogo sobre net/http.
// No reintenta: cualquier reintento lo dispara el operador.
type HTTPGateway struct {
	baseURL    string
	authScheme string
	revokePath string
	tokens     repository.TokenSource
	httpClient *http.Client
	recorder   Recorder
	log        zerolog.Logger
}

// NewHTTPGateway construye el adaptador. tokens entrega el token vigente en cada llamada.
// recorder puede ser nil.
func NewHTTPGateway(cfg Config, tokens repository.TokenSource, recorder Recorder, log zerolog.Logger) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	return &HTTPGateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authScheme: scheme,
		revokePath: cfg.RevokePath,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		recorder:   recorder,
		log:        log.With().Str("component", "gateway").Logger(),
	}
}

// ── Sesión ────────────────────────────────────────────────────────────────────

// Login no requiere token.
func (g *HTTPGateway) Login(ctx context.Context, username, password string) (*entity.LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("catalog login: serializar: %w", err)
	}
	var resp loginResponse
	if err := g.do(ctx, call{op: "login", method: http.MethodPost, path: "/login/", body: body, public: true}, &resp); err != nil {
		return nil, err
	}
	return resp.toEntity(), nil
}

// Revoke aviso best effort; usa el token recibido, no el de la sesión (que ya fue borrado).
func (g *HTTPGateway) Revoke(ctx context.Context, token string) error {
	if g.revokePath == "" || token == "" {
		return nil
	}
	return g.do(ctx, call{op: "revoke", method: http.MethodPost, path: g.revokePath, token: token}, nil)
}

// GetWarehouse consulta una bodega por ID.
func (g *HTTPGateway) GetWarehouse(ctx context.Context, id int64) (*entity.Warehouse, error) {
	var d warehouseDTO
	if err := g.do(ctx, call{op: "get_warehouse", method: http.MethodGet, path: idPath("warehouses", id)}, &d); err != nil {
		return nil, err
	}
	return &entity.Warehouse{ID: d.WarehouseID, Name: d.Name, Location: d.Location}, nil
}

// ── Inventario ────────────────────────────────────────────────────────────────

// FetchInventory devuelve todo lo visible para la sesión; puede incluir otras bodegas.
func (g *HTTPGateway) FetchInventory(ctx context.Context) ([]entity.InventoryRecord, error) {
	list, err := fetchList[inventoryDTO](ctx, g, "fetch_inventory", "/inventory/")
	if err != nil {
		return nil, err
	}
	return mapList(list, inventoryDTO.toEntity), nil
}

func (g *HTTPGateway) CreateInventory(ctx context.Context, in entity.InventoryWrite) (*entity.InventoryRecord, error) {
	return g.writeInventory(ctx, "create_inventory", http.MethodPost, "/inventory/", in)
}

func (g *HTTPGateway) UpdateInventory(ctx context.Context, id int64, in entity.InventoryWrite) (*entity.InventoryRecord, error) {
	return g.writeInventory(ctx, "update_inventory", http.MethodPut, idPath("inventory", id), in)
}

func (g *HTTPGateway) writeInventory(ctx context.Context, op, method, path string, in entity.InventoryWrite) (*entity.InventoryRecord, error) {
	body, err := json.Marshal(inventoryWrite{Warehouse: in.WarehouseID, Product: in.ProductID, Quantity: in.Quantity})
	if err != nil {
		return nil, fmt.Errorf("catalog %s: serializar: %w", op, err)
	}
	var d inventoryDTO
	if err := g.do(ctx, call{op: op, method: method, path: path, body: body}, &d); err != nil {
		return nil, err
	}
	rec := d.toEntity()
	return &rec, nil
}

func (g *HTTPGateway) DeleteInventory(ctx context.Context, id int64) error {
	return g.do(ctx, call{op: "delete_inventory", method: http.MethodDelete, path: idPath("inventory", id)}, nil)
}

// ── Productos ─────────────────────────────────────────────────────────────────

func (g *HTTPGateway) FetchProducts(ctx context.Context) ([]entity.Product, error) {
	list, err := fetchList[productDTO](ctx, g, "fetch_products", "/products/")
	if err != nil {
		return nil, err
	}
	return mapList(list, productDTO.toEntity), nil
}

// CreateProduct envía multipart/form-data para admitir la imagen opcional.
func (g *HTTPGateway) CreateProduct(ctx context.Context, in entity.NewProduct, image *entity.ProductImage) (*entity.Product, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", in.Name},
		{"sku", in.SKU},
		{"category", strconv.FormatInt(in.CategoryID, 10)},
		{"description", in.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("catalog create_product: campo %s: %w", f[0], err)
		}
	}
	if image != nil && len(image.Data) > 0 {
		if err := writeImagePart(w, image); err != nil {
			return nil, fmt.Errorf("catalog create_product: imagen: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("catalog create_product: cerrar multipart: %w", err)
	}

	var d productDTO
	c := call{op: "create_product", method: http.MethodPost, path: "/products/", body: buf.Bytes(), contentType: w.FormDataContentType()}
	if err := g.do(ctx, c, &d); err != nil {
		return nil, err
	}
	p := d.toEntity()
	return &p, nil
}

func writeImagePart(w *multipart.Writer, image *entity.ProductImage) error {
	filename := image.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(image.Data)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, strings.ReplaceAll(filename, `"`, "")))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(image.Data)
	return err
}

// ── Categorías ────────────────────────────────────────────────────────────────

func (g *HTTPGateway) FetchCategories(ctx context.Context, warehouseID int64) ([]entity.Category, error) {
	path := "/categories/"
	if warehouseID != 0 {
		path += "?" + url.Values{"warehouse": {strconv.FormatInt(warehouseID, 10)}}.Encode()
	}
	list, err := fetchList[categoryDTO](ctx, g, "fetch_categories", path)
	if err != nil {
		return nil, err
	}
	return mapList(list, categoryDTO.toEntity), nil
}

func (g *HTTPGateway) CreateCategory(ctx context.Context, name string, warehouseID int64) (*entity.Category, error) {
	body, err := json.Marshal(categoryWrite{Name: name, Warehouse: warehouseID})
	if err != nil {
		return nil, fmt.Errorf("catalog create_category: serializar: %w", err)
	}
	var d categoryDTO
	if err := g.do(ctx, call{op: "create_category", method: http.MethodPost, path: "/categories/", body: body}, &d); err != nil {
		return nil, err
	}
	c := d.toEntity()
	return &c, nil
}

func (g *HTTPGateway) DeleteCategory(ctx context.Context, id int64) error {
	return g.do(ctx, call{op: "delete_category", method: http.MethodDelete, path: idPath("categories", id)}, nil)
}

// ── Bitácora ──────────────────────────────────────────────────────────────────

func (g *HTTPGateway) FetchStockLogs(ctx context.Context) ([]entity.StockLog, error) {
	list, err := fetchList[stockLogDTO](ctx, g, "fetch_stock_logs", "/stock-logs/")
	if err != nil {
		return nil, err
	}
	return mapList(list, stockLogDTO.toEntity), nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

type call struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
	public      bool   // sin credencial (login)
	token       string // credencial explícita; vacío = la de la sesión
}

func fetchList[T any](ctx context.Context, g *HTTPGateway, op, path string) ([]T, error) {
	var raw json.RawMessage
	if err := g.do(ctx, call{op: op, method: http.MethodGet, path: path}, &raw); err != nil {
		return nil, err
	}
	list, err := decodeList[T](raw)
	if err != nil {
		g.observe(op, OutcomeDecode, http.StatusOK, 0)
		return nil, fmt.Errorf("catalog %s: deserializar lista: %w", op, err)
	}
	return list, nil
}

// do ejecuta la petición y clasifica el resultado según la taxonomía de errores del dominio.
func (g *HTTPGateway) do(ctx context.Context, c call, out any) error {
	token := c.token
	if !c.public && token == "" {
		token = g.tokens.Token()
		if token == "" {
			g.observe(c.op, OutcomeUnauthenticated, 0, 0)
			return fmt.Errorf("catalog %s: %w", c.op, domain.ErrUnauthenticated)
		}
	}

	var body io.Reader
	if c.body != nil {
		body = bytes.NewReader(c.body)
	}
	req, err := http.NewRequestWithContext(ctx, c.method, g.baseURL+c.path, body)
	if err != nil {
		return fmt.Errorf("catalog %s: crear HTTP request: %w", c.op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if c.body != nil {
		ct := c.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}
	if token != "" {
		req.Header.Set("Authorization", g.authScheme+" "+token)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		g.observe(c.op, OutcomeUnreachable, 0, elapsed)
		cause := err
		if ctxErr := ctx.Err(); ctxErr != nil {
			cause = fmt.Errorf("%w: %w", ctxErr, err)
		}
		g.log.Warn().Str("op", c.op).Str("request_id", requestID).Err(err).Msg("servicio de catálogo inalcanzable")
		return &domain.UnreachableError{Op: c.op, Cause: cause}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		g.observe(c.op, OutcomeUnreachable, resp.StatusCode, elapsed)
		return &domain.UnreachableError{Op: c.op, Cause: fmt.Errorf("leer respuesta: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		g.observe(c.op, OutcomeUnauthorized, resp.StatusCode, elapsed)
		return fmt.Errorf("catalog %s: HTTP %d: %w", c.op, resp.StatusCode, domain.ErrUnauthorized)
	case resp.StatusCode >= 400:
		g.observe(c.op, OutcomeRejected, resp.StatusCode, elapsed)
		g.log.Debug().Str("op", c.op).Str("request_id", requestID).Int("status", resp.StatusCode).Msg("operación rechazada")
		return rejected(resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			g.observe(c.op, OutcomeDecode, resp.StatusCode, elapsed)
			return fmt.Errorf("catalog %s: deserializar respuesta: %w", c.op, err)
		}
	}
	g.observe(c.op, OutcomeOK, resp.StatusCode, elapsed)
	return nil
}

// rejected construye el error conservando el detalle de validación del servicio
// ({"sku": ["..."]}, {"detail": "..."} o una lista).
func rejected(status int, raw []byte) error {
	e := &domain.RejectedError{Status: status, Raw: strings.TrimSpace(string(raw))}
	var details map[string]any
	if err := json.Unmarshal(raw, &details); err == nil {
		e.Details = details
		return e
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		e.Details = map[string]any{"errors": list}
		return e
	}
	if e.Raw != "" {
		e.Details = map[string]any{"detail": e.Raw}
	}
	return e
}

func (g *HTTPGateway) observe(op, outcome string, status int, elapsed time.Duration) {
	if g.recorder != nil {
		g.recorder.ObserveCall(op, outcome, status, elapsed)
	}
}
