package repository

import "github.com/GiancarloGO/master-color-api/internal/domain/entity"

// PaymentRepository define el puerto de pagos.
type PaymentRepository interface {
	Create(p *entity.Payment) error
	GetByID(id int64) (*entity.Payment, error)
	// GetByOrderAndMethod devuelve el pago de un pedido para un método dado
	// (en la práctica 1:1 por pasarela). nil, ErrNotFound si no existe.
	GetByOrderAndMethod(orderID int64, method string) (*entity.Payment, error)
	Update(p *entity.Payment) error
}
