package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order representa un pedido de un cliente. Los precios de las líneas se
// capturan al crear el pedido y no se releen del stock después.
type Order struct {
	ID                int64
	ClientID          int64
	UserID            int64
	DeliveryAddressID int64
	Subtotal          decimal.Decimal
	ShippingCost      decimal.Decimal
	Discount          decimal.Decimal
	Status            string
	Observations      string
	Details           []OrderDetail
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Total devuelve subtotal + envío - descuento.
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal.Add(o.ShippingCost).Sub(o.Discount)
}

// OrderDetail es una línea del pedido con el precio unitario capturado al
// momento de la compra.
type OrderDetail struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
