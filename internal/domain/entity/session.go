package entity

// Session identidad autenticada y limitada a una bodega.
// Invariante: Token != "" ⇔ User != nil. WarehouseID == 0 significa sesión sin bodega
// (autenticada pero sin permiso de mutar inventario).
type Session struct {
	Token         string
	User          *User
	WarehouseID   int64
	WarehouseName string
}

// Authenticated indica si hay token y usuario.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// HasWarehouse indica si la sesión está limitada a una bodega.
func (s Session) HasWarehouse() bool {
	return s.WarehouseID != 0
}

// Clone copia la sesión sin compartir el puntero al usuario.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// LoginResult respuesta del endpoint de login ya tipada.
type LoginResult struct {
	Token         string
	User          User
	WarehouseID   int64
	WarehouseName string
}
