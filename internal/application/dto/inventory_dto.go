package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
)

// MovementLineRequest línea de un movimiento de inventario.
type MovementLineRequest struct {
	StockID   int64            `json:"stock_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// MovementRequest cuerpo de creación/edición de un movimiento.
type MovementRequest struct {
	MovementType  string                `json:"movement_type"`
	Reason        string                `json:"reason"`
	VoucherNumber string                `json:"voucher_number"`
	Lines         []MovementLineRequest `json:"lines"`
}

// CancelMovementRequest motivo opcional de la anulación.
type CancelMovementRequest struct {
	Reason string `json:"reason"`
}

// MovementDetailResponse línea de auditoría de un movimiento.
type MovementDetailResponse struct {
	StockID       int64            `json:"stock_id"`
	Quantity      int64            `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	PreviousStock int64            `json:"previous_stock"`
	NewStock      int64            `json:"new_stock"`
}

// MovementResponse movimiento serializado.
type MovementResponse struct {
	ID            int64                    `json:"id"`
	MovementType  string                   `json:"movement_type"`
	Reason        string                   `json:"reason"`
	VoucherNumber string                   `json:"voucher_number"`
	UserID        int64                    `json:"user_id"`
	CanceledAt    *time.Time               `json:"canceled_at,omitempty"`
	Details       []MovementDetailResponse `json:"details,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// ToMovementResponse convierte la entidad a su representación HTTP.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	resp := MovementResponse{
		ID:            m.ID,
		MovementType:  m.MovementType,
		Reason:        m.Reason,
		VoucherNumber: m.VoucherNumber,
		UserID:        m.UserID,
		CanceledAt:    m.CanceledAt,
		CreatedAt:     m.CreatedAt,
	}
	for _, d := range m.Details {
		resp.Details = append(resp.Details, MovementDetailResponse{
			StockID:       d.StockID,
			Quantity:      d.Quantity,
			UnitPrice:     d.UnitPrice,
			PreviousStock: d.PreviousStock,
			NewStock:      d.NewStock,
		})
	}
	return resp
}

// StockResponse consulta de stock de un producto.
type StockResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	MinStock  int64           `json:"min_stock"`
	MaxStock  int64           `json:"max_stock"`
	SalePrice decimal.Decimal `json:"sale_price"`
	LowStock  bool            `json:"low_stock"`
}
