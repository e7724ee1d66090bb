package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (enumeración cerrada, vocabulario de la API).
const (
	MovementTypeIn     = "entrada"    // compra/ingreso
	MovementTypeOut    = "salida"     // venta/egreso
	MovementTypeAdjust = "ajuste"     // fija la cantidad literal
	MovementTypeReturn = "devolucion" // reingreso por devolución
)

// ValidMovementType verifica que el tipo pertenezca a la enumeración.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjust, MovementTypeReturn:
		return true
	}
	return false
}

// ReverseMovementType devuelve el tipo que anula a t. Los ajustes no tienen
// inverso natural (fijan la cantidad, no la desplazan), por eso ok=false.
func ReverseMovementType(t string) (string, bool) {
	switch t {
	case MovementTypeIn:
		return MovementTypeOut, true
	case MovementTypeOut:
		return MovementTypeIn, true
	case MovementTypeReturn:
		return MovementTypeOut, true
	}
	return "", false
}

// StockMovement representa una transacción del libro de inventario que agrupa
// uno o más cambios por línea de stock. La historia es append-only: anular un
// movimiento marca CanceledAt y crea un movimiento inverso nuevo.
type StockMovement struct {
	ID            int64
	MovementType  string
	Reason        string
	VoucherNumber string
	UserID        int64
	CanceledAt    *time.Time
	Details       []MovementDetail
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsCanceled indica si el movimiento fue anulado (inmutable desde entonces).
func (m *StockMovement) IsCanceled() bool {
	return m.CanceledAt != nil
}

// MovementDetail es una línea dentro de un movimiento. PreviousStock y
// NewStock son una instantánea de auditoría al momento de aplicar, no
// valores derivados.
type MovementDetail struct {
	ID              int64
	StockMovementID int64
	StockID         int64
	Quantity        int64
	UnitPrice       *decimal.Decimal
	PreviousStock   int64
	NewStock        int64
	CreatedAt       time.Time
}
