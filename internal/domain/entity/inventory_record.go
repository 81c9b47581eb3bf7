package entity

import "time"

// LowStockThreshold por debajo de este valor (estricto) el registro se considera con stock bajo.
const LowStockThreshold = 10

// InventoryRecord stock de un producto en una bodega.
// ProductDetails es la instantánea desnormalizada para mostrar; ProductID es la referencia de escritura.
type InventoryRecord struct {
	ID             int64
	WarehouseID    int64
	ProductID      int64
	ProductDetails *Product
	Quantity       int
	LastUpdated    time.Time
}

// LowStock predicado derivado, nunca almacenado.
func (r InventoryRecord) LowStock() bool {
	return r.Quantity < LowStockThreshold
}

// Clone copia profunda: los lectores del caché nunca reciben punteros mutables compartidos.
func (r InventoryRecord) Clone() InventoryRecord {
	if r.ProductDetails != nil {
		p := *r.ProductDetails
		if p.Category != nil {
			c := *p.Category
			p.Category = &c
		}
		r.ProductDetails = &p
	}
	return r
}

// InventoryWrite cuerpo de escritura exigido por el servicio: siempre los tres campos.
type InventoryWrite struct {
	WarehouseID int64
	ProductID   int64
	Quantity    int
}
