package repository

import "github.com/GiancarloGO/master-color-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar el contador de
// stock de un producto. Las mutaciones del libro siempre ocurren dentro de
// una transacción usando GetForUpdate.
type StockRepository interface {
	GetByID(id int64) (*entity.Stock, error)
	GetByProductID(productID int64) (*entity.Stock, error)
	List(limit, offset int) ([]entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE) y así
	// serializa la secuencia leer-verificar-escribir frente a movimientos
	// concurrentes sobre la misma línea.
	GetForUpdate(id int64) (*entity.Stock, error)
	// GetForUpdateByProduct igual que GetForUpdate pero localizando la fila
	// por producto (descuento de stock al aprobarse un pedido).
	GetForUpdateByProduct(productID int64) (*entity.Stock, error)
	UpdateQuantity(id int64, quantity int64) error
}
