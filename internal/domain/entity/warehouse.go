package entity

// Warehouse bodega a la que se limita la sesión (una a la vez).
type Warehouse struct {
	ID       int64
	Name     string
	Location string
}
