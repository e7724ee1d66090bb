package repository

import "github.com/GiancarloGO/master-color-api/internal/domain/entity"

// OrderRepository define el puerto de pedidos.
type OrderRepository interface {
	Create(o *entity.Order) error
	GetByID(id int64) (*entity.Order, error)
	// GetWithDetails carga el pedido con sus líneas.
	GetWithDetails(id int64) (*entity.Order, error)
	GetByClient(clientID, orderID int64) (*entity.Order, error)
	List(limit, offset int) ([]entity.Order, error)
	ListByClient(clientID int64, limit, offset int) ([]entity.Order, error)
	UpdateStatus(id int64, status string) error
	CreateDetail(d *entity.OrderDetail) error
}
