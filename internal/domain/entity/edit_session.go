package entity

import "time"

// EditSession borrador de cantidad de un registro que se está editando.
// Como máximo una por registro.
type EditSession struct {
	ID               string
	RecordID         int64
	OriginalQuantity int
	Draft            int
	StartedAt        time.Time
}
