package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa el contador de inventario de un producto (relación 1:1).
// Quantity se mantiene denormalizado para lecturas O(1); la fuente de verdad
// es la suma de los movimientos no anulados.
type Stock struct {
	ID            int64
	ProductID     int64
	Quantity      int64
	MinStock      int64
	MaxStock      int64
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si la cantidad está en o por debajo del umbral mínimo.
func (s *Stock) IsLowStock() bool {
	return s.Quantity <= s.MinStock
}
