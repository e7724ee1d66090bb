package payment

import (
	"context"
	"fmt"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/order"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
)

// PreferenceResult es lo que necesita el frontend para abrir el checkout.
type PreferenceResult struct {
	PreferenceID     string
	InitPoint        string
	SandboxInitPoint string
}

// CreatePaymentPreference crea la preferencia de checkout para un pedido del
// cliente. Solo se admite en pendiente_pago, y el stock se revalida antes de
// mandar al cliente a pagar: si ya no alcanza, mejor frenarlo acá que
// rechazarle el pedido con el pago aprobado.
func (uc *UseCase) CreatePaymentPreference(ctx context.Context, clientID, orderID int64) (*PreferenceResult, error) {
	o, err := uc.orders.GetByClient(clientID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusAwaitingPayment {
		return nil, fmt.Errorf("%w: el pedido no está esperando pago", domain.ErrConflict)
	}
	o, err = uc.orders.GetWithDetails(o.ID)
	if err != nil {
		return nil, err
	}
	client, err := uc.clients.GetByID(clientID)
	if err != nil {
		return nil, err
	}

	var items []PreferenceItem
	err = uc.tx.RunPayment(ctx, func(
		paymentRepo repository.PaymentRepository,
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		items, err = buildCheckoutItems(stockRepo, productRepo, o)
		return err
	})
	if err != nil {
		return nil, err
	}

	req := PreferenceRequest{
		ExternalReference:   fmt.Sprintf("%d", o.ID),
		Items:               items,
		PayerName:           client.Name,
		PayerEmail:          client.Email,
		Currency:            uc.currency,
		StatementDescriptor: uc.statementName,
		NotificationURL:     uc.notificationURL,
	}

	pref, err := uc.gateway.CreatePreference(ctx, req)
	if err != nil {
		return nil, err
	}

	// Registrar (o refrescar) el pago local en pending con la preferencia.
	pay, err := uc.payments.GetByOrderAndMethod(o.ID, entity.PaymentMethodMercadoPago)
	switch {
	case err == nil:
		pay.PaymentCode = pref.ID
		pay.ExternalResponse = pref.Raw
		if err := uc.payments.Update(pay); err != nil {
			return nil, err
		}
	case isNotFound(err):
		pay = &entity.Payment{
			OrderID:          o.ID,
			PaymentMethod:    entity.PaymentMethodMercadoPago,
			PaymentCode:      pref.ID,
			Amount:           o.Total(),
			Currency:         uc.currency,
			Status:           entity.PaymentStatusPending,
			ExternalResponse: pref.Raw,
		}
		if err := uc.payments.Create(pay); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	uc.log.Info().
		Int64("order_id", o.ID).
		Str("preference_id", pref.ID).
		Msg("preferencia de pago creada")
	return &PreferenceResult{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
	}, nil
}

// buildCheckoutItems revalida la disponibilidad de cada línea del pedido
// contra el stock actual y arma los ítems del checkout con el nombre del
// producto y el precio capturado en el pedido.
func buildCheckoutItems(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	o *entity.Order,
) ([]PreferenceItem, error) {
	items := make([]PreferenceItem, 0, len(o.Details))
	for _, d := range o.Details {
		product, err := productRepo.GetByID(d.ProductID)
		if err != nil {
			return nil, err
		}
		stock, err := stockRepo.GetByProductID(d.ProductID)
		if err != nil {
			return nil, err
		}
		if stock.Quantity < d.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   d.ProductID,
				ProductName: product.Name,
				Available:   stock.Quantity,
				Requested:   d.Quantity,
			}
		}
		items = append(items, PreferenceItem{
			Title:     product.Name,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
		})
	}
	return items, nil
}
