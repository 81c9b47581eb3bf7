package inventory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// Option configura el Repository.
type Option func(*Repository)

// WithCacheObserver publica el tamaño del caché (p. ej. metrics.Collector).
func WithCacheObserver(o CacheObserver) Option {
	return func(r *Repository) { r.observer = o }
}

// WithClock reemplaza el reloj usado en las sesiones de edición.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository caché autoritativo en memoria de los registros de la bodega activa.
//
// Todo registro admitido cumple WarehouseID == bodega activa. El mutex nunca se mantiene
// durante una llamada de red: cada operación lee bajo el lock, llama al gateway sin lock y
// aplica la respuesta bajo el lock, por lo que la última respuesta en llegar determina el estado.
// El repositorio no refresca después de mutar; eso lo decide quien llama.
type Repository struct {
	gw         Gateway
	warehouses WarehouseSource
	log        zerolog.Logger
	observer   CacheObserver
	now        func() time.Time

	mu          sync.RWMutex
	warehouseID int64 // bodega a la que pertenece el caché; 0 = vacío
	records     []entity.InventoryRecord
	edits       map[int64]*entity.EditSession
	products    map[int64]entity.Product
}

// NewRepository construye el repositorio con el caché vacío.
func NewRepository(gw Gateway, warehouses WarehouseSource, log zerolog.Logger, opts ...Option) *Repository {
	r := &Repository{
		gw:         gw,
		warehouses: warehouses,
		log:        log.With().Str("component", "inventory").Logger(),
		now:        time.Now,
		edits:      make(map[int64]*entity.EditSession),
		products:   make(map[int64]entity.Product),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ── Lectura ───────────────────────────────────────────────────────────────────

// Snapshot copia de los registros en caché, en el orden en que los entregó el servicio.
// Si la bodega activa ya no es la del caché devuelve vacío hasta el próximo Refresh.
func (r *Repository) Snapshot() []entity.InventoryRecord {
	active, ok := r.warehouses.CurrentWarehouse()

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !ok || active != r.warehouseID {
		return []entity.InventoryRecord{}
	}
	out := make([]entity.InventoryRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}

// Record un registro del caché por ID.
func (r *Repository) Record(recordID int64) (entity.InventoryRecord, bool) {
	active, ok := r.warehouses.CurrentWarehouse()

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !ok || active != r.warehouseID {
		return entity.InventoryRecord{}, false
	}
	i := r.indexLocked(recordID)
	if i < 0 {
		return entity.InventoryRecord{}, false
	}
	return r.records[i].Clone(), true
}

// WarehouseID bodega a la que pertenece el caché actual.
func (r *Repository) WarehouseID() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.warehouseID
}

// ── Refresh ───────────────────────────────────────────────────────────────────

// Refresh trae todo lo visible para la sesión, descarta los registros de otras bodegas y
// reemplaza el caché de una vez. Los borradores abiertos se conservan; las ediciones de
// registros que ya no existen se descartan.
func (r *Repository) Refresh(ctx context.Context) error {
	active, ok := r.warehouses.CurrentWarehouse()
	if !ok {
		r.Reset()
		return noWarehouse()
	}

	list, err := r.gw.FetchInventory(ctx)
	if err != nil {
		return err
	}

	next := make([]entity.InventoryRecord, 0, len(list))
	for _, rec := range list {
		if rec.WarehouseID != active {
			continue
		}
		next = append(next, rec.Clone())
	}

	r.mu.Lock()
	if now, ok := r.warehouses.CurrentWarehouse(); !ok || now != active {
		// la bodega cambió mientras la petición estaba en vuelo
		r.mu.Unlock()
		r.log.Debug().Int64("warehouse_id", active).Msg("refresh obsoleto descartado")
		return nil
	}
	r.syncScopeLocked(active)
	present := make(map[int64]struct{}, len(next))
	for _, rec := range next {
		present[rec.ID] = struct{}{}
		if rec.ProductDetails != nil {
			r.products[rec.ProductID] = *rec.ProductDetails
		}
	}
	for id := range r.edits {
		if _, ok := present[id]; !ok {
			delete(r.edits, id)
		}
	}
	r.records = next
	size := len(next)
	r.mu.Unlock()

	r.publish(size)
	r.log.Debug().
		Int64("warehouse_id", active).
		Int("received", len(list)).
		Int("kept", size).
		Msg("inventario refrescado")
	return nil
}

// Reset vacía caché, ediciones e índice de productos (logout).
func (r *Repository) Reset() {
	r.mu.Lock()
	r.warehouseID = 0
	r.records = nil
	clear(r.edits)
	clear(r.products)
	r.mu.Unlock()
	r.publish(0)
}

// ── Productos ─────────────────────────────────────────────────────────────────

// LoadProducts trae los productos visibles y reemplaza el índice local.
func (r *Repository) LoadProducts(ctx context.Context) ([]entity.Product, error) {
	list, err := r.gw.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	clear(r.products)
	for _, p := range list {
		r.products[p.ID] = p
	}
	r.mu.Unlock()
	return list, nil
}

// AdmitProduct registra un producto recién creado para que Create lo resuelva.
func (r *Repository) AdmitProduct(p entity.Product) {
	if p.ID <= 0 {
		return
	}
	r.mu.Lock()
	r.products[p.ID] = p
	r.mu.Unlock()
}

// Product busca un producto en el índice local.
func (r *Repository) Product(id int64) (entity.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p, ok
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// Create da de alta stock de un producto en la bodega activa. Valida localmente antes de
// cualquier llamada de red. Si el servicio falla el caché no cambia y el error se devuelve tal cual.
func (r *Repository) Create(ctx context.Context, productID int64, quantity int) (entity.InventoryRecord, error) {
	if quantity < 0 {
		return entity.InventoryRecord{}, domain.Invalid("quantity", "debe ser un entero no negativo")
	}
	if productID <= 0 {
		return entity.InventoryRecord{}, domain.Invalid("product_id", "requerido")
	}
	active, ok := r.warehouses.CurrentWarehouse()
	if !ok {
		return entity.InventoryRecord{}, noWarehouse()
	}
	product, ok := r.Product(productID)
	if !ok {
		return entity.InventoryRecord{}, domain.Invalid("product_id", fmt.Sprintf("producto %d desconocido", productID))
	}

	created, err := r.gw.CreateInventory(ctx, entity.InventoryWrite{WarehouseID: active, ProductID: productID, Quantity: quantity})
	if err != nil {
		return entity.InventoryRecord{}, err
	}
	rec := created.Clone()
	if rec.ProductDetails == nil {
		p := product
		rec.ProductDetails = &p
	}

	r.mu.Lock()
	if now, ok := r.warehouses.CurrentWarehouse(); !ok || now != active {
		// la bodega cambió durante la llamada: el registro no pertenece al caché actual
		r.mu.Unlock()
		r.log.Debug().Int64("record_id", rec.ID).Int64("warehouse_id", active).Msg("alta fuera de la bodega activa; no se cachea")
		return rec.Clone(), nil
	}
	r.syncScopeLocked(active) // active sigue vigente bajo el lock
	r.mergeLocked(rec)
	size := len(r.records)
	r.mu.Unlock()

	r.publish(size)
	r.log.Info().Int64("record_id", rec.ID).Int64("product_id", productID).Int("quantity", rec.Quantity).Msg("inventario creado")
	return rec.Clone(), nil
}

// BeginEdit abre la sesión de edición de un registro. Como máximo una por registro:
// una segunda llamada sin Commit/Cancel intermedio falla con ErrAlreadyEditing.
func (r *Repository) BeginEdit(recordID int64) (entity.EditSession, error) {
	active, ok := r.warehouses.CurrentWarehouse()
	if !ok {
		return entity.EditSession{}, noWarehouse()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncScopeLocked(active)
	i := r.indexLocked(recordID)
	if i < 0 {
		return entity.EditSession{}, unknownRecord(recordID)
	}
	if _, busy := r.edits[recordID]; busy {
		return entity.EditSession{}, fmt.Errorf("registro %d: %w", recordID, domain.ErrAlreadyEditing)
	}
	es := &entity.EditSession{
		ID:               uuid.NewString(),
		RecordID:         recordID,
		OriginalQuantity: r.records[i].Quantity,
		Draft:            r.records[i].Quantity,
		StartedAt:        r.now(),
	}
	r.edits[recordID] = es
	return *es, nil
}

// UpdateDraft actualiza el borrador de una edición abierta.
func (r *Repository) UpdateDraft(recordID int64, quantity int) (entity.EditSession, error) {
	if quantity < 0 {
		return entity.EditSession{}, domain.Invalid("quantity", "debe ser un entero no negativo")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	es, ok := r.edits[recordID]
	if !ok {
		return entity.EditSession{}, fmt.Errorf("edición del registro %d: %w", recordID, domain.ErrNotFound)
	}
	es.Draft = quantity
	return *es, nil
}

// EditSession edición abierta de un registro, si existe.
func (r *Repository) EditSession(recordID int64) (entity.EditSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	es, ok := r.edits[recordID]
	if !ok {
		return entity.EditSession{}, false
	}
	return *es, true
}

// EditSessions todas las ediciones abiertas.
func (r *Repository) EditSessions() []entity.EditSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.EditSession, 0, len(r.edits))
	for _, es := range r.edits {
		out = append(out, *es)
	}
	slices.SortFunc(out, func(a, b entity.EditSession) int { return a.StartedAt.Compare(b.StartedAt) })
	return out
}

// CommitEdit envía la nueva cantidad junto con la bodega y el producto actuales del registro.
// Si hay edición abierta, su borrador pasa a ser newQuantity y solo se cierra si el servicio confirma.
// Sin edición abierta se actualiza directamente.
func (r *Repository) CommitEdit(ctx context.Context, recordID int64, newQuantity int) (entity.InventoryRecord, error) {
	if newQuantity < 0 {
		return entity.InventoryRecord{}, domain.Invalid("quantity", "debe ser un entero no negativo")
	}
	active, ok := r.warehouses.CurrentWarehouse()
	if !ok {
		return entity.InventoryRecord{}, noWarehouse()
	}

	r.mu.Lock()
	r.syncScopeLocked(active)
	i := r.indexLocked(recordID)
	if i < 0 {
		r.mu.Unlock()
		return entity.InventoryRecord{}, unknownRecord(recordID)
	}
	current := r.records[i].Clone()
	if es, ok := r.edits[recordID]; ok {
		es.Draft = newQuantity
	}
	r.mu.Unlock()

	write := entity.InventoryWrite{
		WarehouseID: current.WarehouseID,
		ProductID:   current.ProductID,
		Quantity:    newQuantity,
	}
	updated, err := r.gw.UpdateInventory(ctx, recordID, write)
	if err != nil {
		r.log.Debug().Err(err).Int64("record_id", recordID).Msg("commit rechazado; el borrador se conserva")
		return entity.InventoryRecord{}, err
	}
	rec := updated.Clone()
	if rec.ProductDetails == nil {
		rec.ProductDetails = current.ProductDetails
	}

	r.mu.Lock()
	if r.warehouseID == active {
		r.mergeLocked(rec)
		delete(r.edits, recordID)
	}
	r.mu.Unlock()

	r.log.Info().Int64("record_id", recordID).Int("quantity", rec.Quantity).Msg("cantidad actualizada")
	return rec.Clone(), nil
}

// CancelEdit descarta el borrador sin tocar la red. No aborta un commit ya enviado.
func (r *Repository) CancelEdit(recordID int64) {
	r.mu.Lock()
	delete(r.edits, recordID)
	r.mu.Unlock()
}

// Delete borra el registro en el servicio y, solo tras su confirmación, del caché.
func (r *Repository) Delete(ctx context.Context, recordID int64) error {
	active, ok := r.warehouses.CurrentWarehouse()
	if !ok {
		return noWarehouse()
	}
	r.mu.Lock()
	r.syncScopeLocked(active)
	known := r.indexLocked(recordID) >= 0
	r.mu.Unlock()
	if !known {
		return unknownRecord(recordID)
	}

	if err := r.gw.DeleteInventory(ctx, recordID); err != nil {
		return err
	}

	r.mu.Lock()
	if i := r.indexLocked(recordID); i >= 0 {
		r.records = slices.Delete(r.records, i, i+1)
	}
	delete(r.edits, recordID)
	size := len(r.records)
	r.mu.Unlock()

	r.publish(size)
	r.log.Info().Int64("record_id", recordID).Msg("registro de inventario eliminado")
	return nil
}

// ── Internos ──────────────────────────────────────────────────────────────────

// syncScopeLocked si la bodega activa cambió, vacía caché y ediciones. Requiere r.mu tomado.
func (r *Repository) syncScopeLocked(active int64) {
	if r.warehouseID == active {
		return
	}
	if r.warehouseID != 0 {
		r.log.Info().Int64("from", r.warehouseID).Int64("to", active).Msg("bodega cambiada; caché vaciado")
	}
	r.warehouseID = active
	r.records = nil
	clear(r.edits)
}

// mergeLocked reemplaza por ID o por (bodega, producto), ya que el servicio fusiona
// altas repetidas en la fila existente; si no existe la agrega. Requiere r.mu tomado.
func (r *Repository) mergeLocked(rec entity.InventoryRecord) {
	if rec.WarehouseID != r.warehouseID {
		return
	}
	if rec.ProductDetails != nil {
		r.products[rec.ProductID] = *rec.ProductDetails
	}
	for i := range r.records {
		if r.records[i].ID == rec.ID ||
			(r.records[i].WarehouseID == rec.WarehouseID && r.records[i].ProductID == rec.ProductID) {
			r.records[i] = rec
			return
		}
	}
	r.records = append(r.records, rec)
}

func (r *Repository) indexLocked(recordID int64) int {
	return slices.IndexFunc(r.records, func(rec entity.InventoryRecord) bool { return rec.ID == recordID })
}

func (r *Repository) publish(size int) {
	if r.observer != nil {
		r.observer.SetCacheSize(size)
	}
}

func noWarehouse() error {
	return fmt.Errorf("%w: %w", domain.ErrNoActiveWarehouse, domain.Invalid("warehouse_id", "la sesión no tiene bodega activa"))
}

func unknownRecord(id int64) error {
	return domain.Invalid("record_id", fmt.Sprintf("registro %d no está en el caché", id))
}
