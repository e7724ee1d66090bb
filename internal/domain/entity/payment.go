package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados locales de un pago (proyección del estado de la pasarela).
const (
	PaymentStatusPending   = "pending"
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

// PaymentMethodMercadoPago es el único método con integración de pasarela.
const PaymentMethodMercadoPago = "MercadoPago"

// Payment representa un intento/registro de pago de un pedido.
// ExternalResponse guarda el payload crudo de la pasarela para auditoría.
type Payment struct {
	ID               int64
	OrderID          int64
	PaymentMethod    string
	PaymentCode      string
	Amount           decimal.Decimal
	Currency         string
	Status           string
	ExternalID       string
	ExternalResponse []byte // JSON crudo de la pasarela
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsTerminal indica si el pago ya no debe volver a consultarse a la pasarela:
// el estado local es autoritativo (un refund posterior sigue siendo posible
// vía webhook).
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}
