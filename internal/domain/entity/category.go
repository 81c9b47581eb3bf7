package entity

// Category categoría de productos; dato de referencia propiedad del servicio de catálogo.
type Category struct {
	ID          int64
	Name        string
	WarehouseID int64 // 0 si la categoría no está asociada a una bodega
}
