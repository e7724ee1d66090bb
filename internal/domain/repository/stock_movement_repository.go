package repository

import (
	"time"

	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
)

// StockMovementRepository define el puerto para el libro de movimientos.
// Los movimientos nunca se editan tras anularse; la anulación marca
// canceled_at y el inverso se registra como movimiento nuevo.
type StockMovementRepository interface {
	Create(m *entity.StockMovement) error
	GetByID(id int64) (*entity.StockMovement, error)
	// GetWithDetails carga el movimiento con sus líneas.
	GetWithDetails(id int64) (*entity.StockMovement, error)
	List(limit, offset int) ([]entity.StockMovement, error)
	Update(m *entity.StockMovement) error
	MarkCanceled(id int64, at time.Time) error
	Delete(id int64) error

	CreateDetail(d *entity.MovementDetail) error
	DeleteDetails(movementID int64) error
}
