package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

// MovementUseCase registra, actualiza, anula y elimina movimientos de
// inventario de forma transaccional, con bloqueo de fila (SELECT FOR UPDATE)
// sobre el stock afectado y Commit/Rollback todo-o-nada.
type MovementUseCase struct {
	tx        TxRunner
	movements repository.StockMovementRepository
	log       *logger.Logger
}

// NewMovementUseCase construye el caso de uso. movements se usa para lecturas
// fuera de transacción; las mutaciones pasan siempre por tx.
func NewMovementUseCase(tx TxRunner, movements repository.StockMovementRepository, log *logger.Logger) *MovementUseCase {
	return &MovementUseCase{tx: tx, movements: movements, log: log}
}

// MovementLineInput una línea de un movimiento (cantidad sobre una fila de stock).
type MovementLineInput struct {
	StockID   int64
	Quantity  int64
	UnitPrice *decimal.Decimal
}

// MovementInput entrada para registrar o actualizar un movimiento.
type MovementInput struct {
	MovementType  string
	Reason        string
	VoucherNumber string
	UserID        int64
	Lines         []MovementLineInput
}

func (in *MovementInput) validate() error {
	if !entity.ValidMovementType(in.MovementType) {
		return domain.ErrInvalidInput
	}
	if in.Reason == "" || len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		// Para ajuste la cantidad es el valor literal a fijar; los negativos se
		// rechazan para que el contador nunca quede bajo cero por esta vía.
		if in.MovementType == entity.MovementTypeAdjust {
			if l.Quantity < 0 {
				return domain.ErrInvalidInput
			}
			continue
		}
		if l.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// CreateMovement abre una transacción, registra el movimiento y aplica cada
// línea sobre el stock. Si alguna salida dejaría el stock negativo, toda la
// transacción se revierte con InsufficientStockError.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var created *entity.StockMovement
	err := uc.tx.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		movement := &entity.StockMovement{
			MovementType:  input.MovementType,
			Reason:        input.Reason,
			VoucherNumber: input.VoucherNumber,
			UserID:        input.UserID,
		}
		if err := movRepo.Create(movement); err != nil {
			return err
		}
		for _, line := range input.Lines {
			if err := applyLine(movRepo, stockRepo, productRepo, movement, line); err != nil {
				return err
			}
		}
		created = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("movement_id", created.ID).
		Str("type", created.MovementType).
		Int("lines", len(input.Lines)).
		Msg("movimiento de inventario registrado")
	return created, nil
}

// UpdateMovement revierte las líneas previas del movimiento (cada stock vuelve
// a su previous_stock), las elimina y aplica el nuevo juego de líneas como si
// se creara de nuevo. Todo dentro de una transacción.
func (uc *MovementUseCase) UpdateMovement(ctx context.Context, id int64, input MovementInput) (*entity.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var updated *entity.StockMovement
	err := uc.tx.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		movement, err := movRepo.GetWithDetails(id)
		if err != nil {
			return err
		}
		if movement.IsCanceled() {
			// Un movimiento anulado es inmutable.
			return domain.ErrAlreadyCanceled
		}
		if err := revertDetails(stockRepo, movement); err != nil {
			return err
		}
		if err := movRepo.DeleteDetails(movement.ID); err != nil {
			return err
		}

		movement.MovementType = input.MovementType
		movement.Reason = input.Reason
		movement.VoucherNumber = input.VoucherNumber
		movement.Details = nil
		if err := movRepo.Update(movement); err != nil {
			return err
		}
		for _, line := range input.Lines {
			if err := applyLine(movRepo, stockRepo, productRepo, movement, line); err != nil {
				return err
			}
		}
		updated = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("movement_id", id).Msg("movimiento de inventario actualizado")
	return updated, nil
}

// CancelMovement anula un movimiento preservando la historia: marca el
// original con canceled_at y registra un movimiento nuevo del tipo inverso
// con las mismas cantidades. Los ajustes no se pueden anular (no tienen
// inverso natural).
func (uc *MovementUseCase) CancelMovement(ctx context.Context, id, userID int64) (*entity.StockMovement, error) {
	var reversal *entity.StockMovement
	err := uc.tx.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		movement, err := movRepo.GetWithDetails(id)
		if err != nil {
			return err
		}
		if movement.IsCanceled() {
			return domain.ErrAlreadyCanceled
		}
		reverseType, ok := entity.ReverseMovementType(movement.MovementType)
		if !ok {
			return domain.ErrNotReversible
		}

		now := time.Now()
		if err := movRepo.MarkCanceled(movement.ID, now); err != nil {
			return err
		}

		cancellation := &entity.StockMovement{
			MovementType:  reverseType,
			Reason:        fmt.Sprintf("ANULACIÓN del movimiento #%d - %s", movement.ID, movement.Reason),
			VoucherNumber: fmt.Sprintf("ANUL-%d-%s", movement.ID, now.Format("20060102150405")),
			UserID:        userID,
		}
		if err := movRepo.Create(cancellation); err != nil {
			return err
		}
		// Mismas líneas, mismas cantidades, tipo inverso.
		for _, d := range movement.Details {
			line := MovementLineInput{StockID: d.StockID, Quantity: d.Quantity, UnitPrice: d.UnitPrice}
			if err := applyLine(movRepo, stockRepo, productRepo, cancellation, line); err != nil {
				return err
			}
		}
		reversal = cancellation
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("movement_id", id).
		Int64("reversal_id", reversal.ID).
		Msg("movimiento de inventario anulado")
	return reversal, nil
}

// DeleteMovement revierte los efectos sobre el stock y borra el movimiento y
// sus líneas. Reservado a correcciones de digitación; la anulación normal es
// CancelMovement, que preserva la historia.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, id int64) error {
	err := uc.tx.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		movement, err := movRepo.GetWithDetails(id)
		if err != nil {
			return err
		}
		if err := revertDetails(stockRepo, movement); err != nil {
			return err
		}
		if err := movRepo.DeleteDetails(movement.ID); err != nil {
			return err
		}
		return movRepo.Delete(movement.ID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Int64("movement_id", id).Msg("movimiento de inventario eliminado")
	return nil
}

// GetMovement devuelve un movimiento con sus líneas.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id int64) (*entity.StockMovement, error) {
	return uc.movements.GetWithDetails(id)
}

// ListMovements lista movimientos paginados.
func (uc *MovementUseCase) ListMovements(ctx context.Context, limit, offset int) ([]entity.StockMovement, error) {
	return uc.movements.List(limit, offset)
}

// applyLine bloquea la fila de stock, calcula la nueva cantidad según el tipo,
// registra la línea de auditoría (previous/new) y actualiza el contador.
func applyLine(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	movement *entity.StockMovement,
	line MovementLineInput,
) error {
	stock, err := stockRepo.GetForUpdate(line.StockID)
	if err != nil {
		return err
	}
	previous := stock.Quantity
	next, err := computeNewQuantity(movement.MovementType, previous, line.Quantity)
	if err != nil {
		return insufficientStockError(productRepo, stock, line.Quantity)
	}

	detail := &entity.MovementDetail{
		StockMovementID: movement.ID,
		StockID:         stock.ID,
		Quantity:        line.Quantity,
		UnitPrice:       line.UnitPrice,
		PreviousStock:   previous,
		NewStock:        next,
	}
	if err := movRepo.CreateDetail(detail); err != nil {
		return err
	}
	if err := stockRepo.UpdateQuantity(stock.ID, next); err != nil {
		return err
	}
	movement.Details = append(movement.Details, *detail)
	return nil
}

// computeNewQuantity aplica la semántica por tipo: entrada/devolución suman,
// salida resta (con piso en cero), ajuste fija el valor literal.
func computeNewQuantity(movementType string, current, quantity int64) (int64, error) {
	switch movementType {
	case entity.MovementTypeIn, entity.MovementTypeReturn:
		return current + quantity, nil
	case entity.MovementTypeOut:
		if current < quantity {
			return 0, domain.ErrInsufficientStock
		}
		return current - quantity, nil
	case entity.MovementTypeAdjust:
		return quantity, nil
	}
	return 0, domain.ErrInvalidInput
}

// revertDetails restaura cada stock tocado a su previous_stock registrado.
// Es un rollback directo, no un inverso calculado: solo es seguro si ningún
// otro movimiento tocó las mismas filas desde entonces, lo que la transacción
// y el bloqueo de fila garantizan dentro de esta operación.
func revertDetails(stockRepo repository.StockRepository, movement *entity.StockMovement) error {
	for _, d := range movement.Details {
		if _, err := stockRepo.GetForUpdate(d.StockID); err != nil {
			return err
		}
		if err := stockRepo.UpdateQuantity(d.StockID, d.PreviousStock); err != nil {
			return err
		}
	}
	return nil
}

// insufficientStockError arma el error con identidad del producto y faltante.
func insufficientStockError(productRepo repository.ProductRepository, stock *entity.Stock, requested int64) error {
	name := fmt.Sprintf("producto %d", stock.ProductID)
	if product, err := productRepo.GetByID(stock.ProductID); err == nil && product != nil {
		name = product.Name
	}
	return &domain.InsufficientStockError{
		ProductID:   stock.ProductID,
		ProductName: name,
		Available:   stock.Quantity,
		Requested:   requested,
	}
}
