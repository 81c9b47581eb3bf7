package entity

import "time"

// Tipos de acción de la bitácora de stock (los registra el servidor).
const (
	StockActionInbound    = "INBOUND"
	StockActionOutbound   = "OUTBOUND"
	StockActionAdjustment = "ADJUSTMENT"
)

// StockLog entrada de auditoría de un cambio de stock.
type StockLog struct {
	ID             int64
	ProductID      int64
	WarehouseID    int64
	UserID         int64
	ActionType     string // INBOUND, OUTBOUND, ADJUSTMENT
	QuantityChange int
	Timestamp      time.Time
}
