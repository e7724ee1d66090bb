package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
)

// ProcessOrderStockReduction descuenta el inventario de un pedido cuyo pago
// fue aprobado: un único movimiento de salida con una línea por producto del
// pedido. La suficiencia de stock se valida en este momento (aprobación del
// pago), no al crear el pedido.
func (uc *MovementUseCase) ProcessOrderStockReduction(ctx context.Context, order *entity.Order, clientName string) (*entity.StockMovement, error) {
	var movement *entity.StockMovement
	err := uc.tx.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		movement, err = ReduceOrderStockInTx(movRepo, stockRepo, productRepo, order, clientName, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("order_id", order.ID).
		Int64("movement_id", movement.ID).
		Msg("stock descontado por venta")
	return movement, nil
}

// ReduceOrderStockInTx ejecuta el descuento usando repositorios ya atados a la
// transacción del caller. Lo usa la conciliación de pagos para que el cambio
// de estado del pago, del pedido y el descuento de stock confirmen juntos.
func ReduceOrderStockInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	order *entity.Order,
	clientName string,
	now time.Time,
) (*entity.StockMovement, error) {
	actorID := order.UserID
	if actorID == 0 {
		actorID = entity.SystemUserID
	}
	movement := &entity.StockMovement{
		MovementType:  entity.MovementTypeOut,
		Reason:        fmt.Sprintf("VENTA - Orden #%d - Cliente: %s", order.ID, clientName),
		VoucherNumber: fmt.Sprintf("VENTA-%d-%s", order.ID, now.Format("20060102150405")),
		UserID:        actorID,
	}
	if err := movRepo.Create(movement); err != nil {
		return nil, err
	}

	for _, detail := range order.Details {
		stock, err := stockRepo.GetForUpdateByProduct(detail.ProductID)
		if err != nil {
			return nil, err
		}
		if stock.Quantity < detail.Quantity {
			return nil, insufficientStockError(productRepo, stock, detail.Quantity)
		}
		previous := stock.Quantity
		next := previous - detail.Quantity
		unitPrice := detail.UnitPrice
		movDetail := &entity.MovementDetail{
			StockMovementID: movement.ID,
			StockID:         stock.ID,
			Quantity:        detail.Quantity,
			UnitPrice:       &unitPrice,
			PreviousStock:   previous,
			NewStock:        next,
		}
		if err := movRepo.CreateDetail(movDetail); err != nil {
			return nil, err
		}
		if err := stockRepo.UpdateQuantity(stock.ID, next); err != nil {
			return nil, err
		}
		movement.Details = append(movement.Details, *movDetail)
	}
	return movement, nil
}
