package orders

import (
	"context"

	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repositorios que
// necesita la creación de pedidos atados a ella.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}
