package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
)

// OrderItemRequest línea solicitada al crear un pedido.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// CreateOrderRequest cuerpo de creación de pedido.
type CreateOrderRequest struct {
	DeliveryAddressID int64              `json:"delivery_address_id"`
	ShippingCost      decimal.Decimal    `json:"shipping_cost"`
	Observations      string             `json:"observations"`
	Items             []OrderItemRequest `json:"items"`
}

// UpdateOrderStatusRequest cuerpo del cambio de estado administrativo.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderDetailResponse línea del pedido.
type OrderDetailResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse pedido serializado.
type OrderResponse struct {
	ID                int64                 `json:"id"`
	ClientID          int64                 `json:"client_id"`
	DeliveryAddressID int64                 `json:"delivery_address_id"`
	Status            string                `json:"status"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	ShippingCost      decimal.Decimal       `json:"shipping_cost"`
	Discount          decimal.Decimal       `json:"discount"`
	Total             decimal.Decimal       `json:"total"`
	Observations      string                `json:"observations,omitempty"`
	Details           []OrderDetailResponse `json:"details,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// ToOrderResponse convierte la entidad a su representación HTTP.
func ToOrderResponse(o *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		ClientID:          o.ClientID,
		DeliveryAddressID: o.DeliveryAddressID,
		Status:            o.Status,
		Subtotal:          o.Subtotal,
		ShippingCost:      o.ShippingCost,
		Discount:          o.Discount,
		Total:             o.Total(),
		Observations:      o.Observations,
		CreatedAt:         o.CreatedAt,
	}
	for _, d := range o.Details {
		resp.Details = append(resp.Details, OrderDetailResponse{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Subtotal:  d.Subtotal,
		})
	}
	return resp
}

// TrackingStepResponse paso de la línea de tiempo del pedido.
type TrackingStepResponse struct {
	Status  string `json:"status"`
	Reached bool   `json:"reached"`
	Current bool   `json:"current"`
}
