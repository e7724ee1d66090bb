package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/order"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

// OrderUseCase implementa la creación de pedidos, los cambios de estado
// validados por la máquina de estados y la cancelación por el cliente.
type OrderUseCase struct {
	tx       TxRunner
	orders   repository.OrderRepository
	clients  repository.ClientRepository
	notifier Notifier
	log      *logger.Logger
}

func NewOrderUseCase(
	tx TxRunner,
	orders repository.OrderRepository,
	clients repository.ClientRepository,
	notifier Notifier,
	log *logger.Logger,
) *OrderUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderUseCase{tx: tx, orders: orders, clients: clients, notifier: notifier, log: log}
}

// OrderItemInput es una línea solicitada por el cliente.
type OrderItemInput struct {
	ProductID int64
	Quantity  int64
}

// CreateOrderInput es la solicitud de creación de un pedido.
type CreateOrderInput struct {
	ClientID          int64
	DeliveryAddressID int64
	ShippingCost      decimal.Decimal
	Observations      string
	Items             []OrderItemInput
}

func (in *CreateOrderInput) validate() error {
	if in.ClientID <= 0 || in.DeliveryAddressID <= 0 || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	if in.ShippingCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// CreateOrder valida disponibilidad, captura el precio de venta vigente por
// línea y crea el pedido en pendiente_pago. No reserva stock: el descuento
// ocurre recién cuando el pago se aprueba.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if _, err := uc.clients.GetByID(input.ClientID); err != nil {
		return nil, err
	}
	if _, err := uc.clients.GetAddress(input.ClientID, input.DeliveryAddressID); err != nil {
		return nil, err
	}

	var created *entity.Order
	err := uc.tx.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		subtotal := decimal.Zero
		details := make([]entity.OrderDetail, 0, len(input.Items))
		for _, item := range input.Items {
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return domain.ErrInvalidInput
			}
			stock, err := stockRepo.GetByProductID(item.ProductID)
			if err != nil {
				return err
			}
			if stock.Quantity < item.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   stock.Quantity,
					Requested:   item.Quantity,
				}
			}
			lineSubtotal := stock.SalePrice.Mul(decimal.NewFromInt(item.Quantity))
			details = append(details, entity.OrderDetail{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: stock.SalePrice,
				Subtotal:  lineSubtotal,
			})
			subtotal = subtotal.Add(lineSubtotal)
		}

		o := &entity.Order{
			ClientID:          input.ClientID,
			DeliveryAddressID: input.DeliveryAddressID,
			Subtotal:          subtotal,
			ShippingCost:      input.ShippingCost,
			Discount:          decimal.Zero,
			Status:            order.StatusAwaitingPayment,
			Observations:      input.Observations,
		}
		if err := orderRepo.Create(o); err != nil {
			return err
		}
		for i := range details {
			details[i].OrderID = o.ID
			if err := orderRepo.CreateDetail(&details[i]); err != nil {
				return err
			}
		}
		o.Details = details
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("order_id", created.ID).
		Int64("client_id", created.ClientID).
		Str("total", created.Total().String()).
		Msg("pedido creado")
	return created, nil
}

// GetOrder devuelve un pedido con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	return uc.orders.GetWithDetails(id)
}

// GetClientOrder devuelve el pedido solo si pertenece al cliente.
func (uc *OrderUseCase) GetClientOrder(ctx context.Context, clientID, orderID int64) (*entity.Order, error) {
	return uc.orders.GetByClient(clientID, orderID)
}

// ListOrders lista pedidos paginados (vista administrativa).
func (uc *OrderUseCase) ListOrders(ctx context.Context, limit, offset int) ([]entity.Order, error) {
	return uc.orders.List(limit, offset)
}

// ListClientOrders lista los pedidos de un cliente.
func (uc *OrderUseCase) ListClientOrders(ctx context.Context, clientID int64, limit, offset int) ([]entity.Order, error) {
	return uc.orders.ListByClient(clientID, limit, offset)
}

// UpdateStatus aplica un cambio de estado validado por la tabla de
// transiciones. El mismo estado es un no-op silencioso; una transición
// efectiva se persiste y se notifica al cliente.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := order.ValidateTransition(o.Status, newStatus); err != nil {
		return nil, err
	}
	if o.Status == newStatus {
		return o, nil
	}

	previous := o.Status // capturado antes de persistir
	if err := uc.orders.UpdateStatus(o.ID, newStatus); err != nil {
		return nil, err
	}
	o.Status = newStatus
	uc.log.Info().
		Int64("order_id", o.ID).
		Str("from", previous).
		Str("to", newStatus).
		Msg("estado de pedido actualizado")
	uc.notifyChange(o, previous, newStatus)
	return o, nil
}

// CancelByClient cancela un pedido a pedido de su dueño. Solo se permite en
// estados tempranos; después de confirmado la cancelación es administrativa.
func (uc *OrderUseCase) CancelByClient(ctx context.Context, clientID, orderID int64) (*entity.Order, error) {
	o, err := uc.orders.GetByClient(clientID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CancellableByClient(o.Status) {
		return nil, &domain.InvalidTransitionError{From: o.Status, To: order.StatusCancelled}
	}

	previous := o.Status
	if err := uc.orders.UpdateStatus(o.ID, order.StatusCancelled); err != nil {
		return nil, err
	}
	o.Status = order.StatusCancelled
	uc.log.Info().
		Int64("order_id", o.ID).
		Int64("client_id", clientID).
		Str("from", previous).
		Msg("pedido cancelado por el cliente")
	uc.notifyChange(o, previous, order.StatusCancelled)
	return o, nil
}

// notifyChange despacha la notificación en segundo plano, mejor esfuerzo: un
// fallo del correo nunca revierte ni bloquea el cambio de estado.
func (uc *OrderUseCase) notifyChange(o *entity.Order, from, to string) {
	change := StatusChange{
		OrderID:   o.ID,
		From:      from,
		To:        to,
		ChangedAt: time.Now(),
	}
	if client, err := uc.clients.GetByID(o.ClientID); err == nil {
		change.ClientName = client.Name
		change.ClientEmail = client.Email
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := uc.notifier.OrderStatusChanged(ctx, change); err != nil {
			uc.log.Warn().
				Err(err).
				Int64("order_id", change.OrderID).
				Msg("no se pudo notificar el cambio de estado")
		}
	}()
}

// TrackingStep es un paso de la línea de tiempo del pedido.
type TrackingStep struct {
	Status  string
	Reached bool
	Current bool
}

// happyPath es la secuencia normal de estados de un pedido pagado.
var happyPath = []string{
	order.StatusAwaitingPayment,
	order.StatusPending,
	order.StatusConfirmed,
	order.StatusProcessing,
	order.StatusShipped,
	order.StatusDelivered,
}

// TrackingHistory proyecta la línea de tiempo del pedido a partir de su
// estado actual. Es una vista derivada; no hay tabla de historial.
func (uc *OrderUseCase) TrackingHistory(ctx context.Context, clientID, orderID int64) ([]TrackingStep, error) {
	o, err := uc.orders.GetByClient(clientID, orderID)
	if err != nil {
		return nil, err
	}

	// Cancelado y pago fallido se muestran como paso final propio.
	if o.Status == order.StatusCancelled || o.Status == order.StatusPaymentFailed {
		return []TrackingStep{
			{Status: order.StatusAwaitingPayment, Reached: true},
			{Status: o.Status, Reached: true, Current: true},
		}, nil
	}

	position := 0
	for i, s := range happyPath {
		if s == o.Status {
			position = i
			break
		}
	}
	steps := make([]TrackingStep, 0, len(happyPath))
	for i, s := range happyPath {
		steps = append(steps, TrackingStep{
			Status:  s,
			Reached: i <= position,
			Current: i == position,
		})
	}
	return steps, nil
}
