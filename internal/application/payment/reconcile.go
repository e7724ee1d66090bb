package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GiancarloGO/master-color-api/internal/application/inventory"
	"github.com/GiancarloGO/master-color-api/internal/application/orders"
	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/order"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/kv"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

const (
	webhookDedupPrefix   = "webhook_event_"
	attemptsKeyPrefix    = "payment_check_attempts_"
	lastCheckKeyPrefix   = "payment_last_check_"
	pollingStateTTL      = 24 * time.Hour
	unpaidOrderLifetime  = 24 * time.Hour
	maxPollAttempts      = 20
	maxPollDelaySeconds  = 300
	basePollDelaySeconds = 5
)

// UseCase concilia los pagos de MercadoPago con los pedidos: procesa
// webhooks con deduplicación, hace polling con backoff y crea preferencias
// de checkout.
type UseCase struct {
	tx       TxRunner
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	clients  repository.ClientRepository
	gateway  Gateway
	store    kv.Store
	notifier orders.Notifier
	log      *logger.Logger

	dedupTTL        time.Duration
	currency        string
	statementName   string
	notificationURL string
	now             func() time.Time
}

// Config son los parámetros de la conciliación.
type Config struct {
	DedupTTL        time.Duration
	Currency        string
	StatementName   string
	NotificationURL string
}

func NewUseCase(
	tx TxRunner,
	payments repository.PaymentRepository,
	ordersRepo repository.OrderRepository,
	clients repository.ClientRepository,
	gateway Gateway,
	store kv.Store,
	notifier orders.Notifier,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if notifier == nil {
		notifier = orders.NopNotifier{}
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = 24 * time.Hour
	}
	return &UseCase{
		tx:              tx,
		payments:        payments,
		orders:          ordersRepo,
		clients:         clients,
		gateway:         gateway,
		store:           store,
		notifier:        notifier,
		log:             log,
		dedupTTL:        cfg.DedupTTL,
		currency:        cfg.Currency,
		statementName:   cfg.StatementName,
		notificationURL: cfg.NotificationURL,
		now:             time.Now,
	}
}

// ProcessWebhook procesa una notificación ya normalizada. Un duplicado (misma
// clave dentro de la ventana de retención) es éxito sin efectos: la pasarela
// reintenta entregas y la primera ya mutó lo que había que mutar.
func (uc *UseCase) ProcessWebhook(ctx context.Context, event *WebhookEvent) error {
	// Marcar-y-verificar atómico: solo la primera entrega pasa.
	first, err := uc.store.SetNX(ctx, webhookDedupPrefix+event.DedupKey, "1", uc.dedupTTL)
	if err != nil {
		return err
	}
	if !first {
		uc.log.Info().Str("dedup_key", event.DedupKey).Msg("webhook duplicado ignorado")
		return nil
	}

	if event.Topic != "payment" {
		// Otros tópicos (merchant_order, etc.) se reciben y descartan.
		uc.log.Debug().Str("topic", event.Topic).Msg("tópico de webhook sin manejo")
		return nil
	}

	if err := uc.processPaymentEvent(ctx, event); err != nil {
		// La marca de dedup se libera para que el reintento de la pasarela
		// vuelva a procesar la notificación.
		if delErr := uc.store.Del(ctx, webhookDedupPrefix+event.DedupKey); delErr != nil {
			uc.log.Warn().Err(delErr).Msg("no se pudo liberar la marca de dedup")
		}
		return err
	}
	return nil
}

func (uc *UseCase) processPaymentEvent(ctx context.Context, event *WebhookEvent) error {
	gp, err := uc.gateway.FetchPayment(ctx, event.PaymentID)
	if err != nil {
		return err
	}
	orderID, err := strconv.ParseInt(gp.ExternalReference, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: external_reference %q no es un ID de pedido", domain.ErrInvalidInput, gp.ExternalReference)
	}
	_, err = uc.applyGatewayStatus(ctx, orderID, gp)
	return err
}

// applyGatewayStatus persiste el estado reportado por la pasarela y ejecuta
// los efectos del pedido en la misma transacción. Aplicar el mismo estado dos
// veces no repite efectos (idempotente por comparación de estado). Devuelve
// si el estado local del pago cambió.
func (uc *UseCase) applyGatewayStatus(ctx context.Context, orderID int64, gp *GatewayPayment) (bool, error) {
	newStatus := MapStatus(gp.Status)

	var statusChanged bool
	var change *orders.StatusChange
	err := uc.tx.RunPayment(ctx, func(
		paymentRepo repository.PaymentRepository,
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		pay, err := paymentRepo.GetByOrderAndMethod(orderID, entity.PaymentMethodMercadoPago)
		created := false
		switch {
		case err == nil:
		case isNotFound(err):
			created = true
			pay = &entity.Payment{
				OrderID:       orderID,
				PaymentMethod: entity.PaymentMethodMercadoPago,
				Amount:        gp.TransactionAmount,
				Currency:      uc.currency,
				Status:        entity.PaymentStatusPending,
			}
			if err := paymentRepo.Create(pay); err != nil {
				return err
			}
		default:
			return err
		}

		previousStatus := pay.Status
		pay.Status = newStatus
		pay.ExternalID = gp.ID
		pay.ExternalResponse = gp.Raw
		if err := paymentRepo.Update(pay); err != nil {
			return err
		}
		if previousStatus == newStatus && !created {
			// Solo se refrescó el payload crudo; sin efectos sobre el pedido.
			return nil
		}
		statusChanged = true

		o, err := orderRepo.GetWithDetails(orderID)
		if err != nil {
			return err
		}
		switch newStatus {
		case entity.PaymentStatusApproved:
			if o.Status != order.StatusAwaitingPayment {
				return nil
			}
			clientName := ""
			if client, cerr := uc.clients.GetByID(o.ClientID); cerr == nil {
				clientName = client.Name
			}
			if _, err := inventory.ReduceOrderStockInTx(movRepo, stockRepo, productRepo, o, clientName, uc.now()); err != nil {
				return err
			}
			if err := orderRepo.UpdateStatus(o.ID, order.StatusPending); err != nil {
				return err
			}
			change = &orders.StatusChange{
				OrderID: o.ID, From: o.Status, To: order.StatusPending, ChangedAt: uc.now(),
			}
		case entity.PaymentStatusRejected, entity.PaymentStatusCancelled:
			if o.Status != order.StatusAwaitingPayment {
				// Un rechazo posterior a la aprobación no revierte el stock
				// automáticamente; queda para revisión manual.
				uc.log.Warn().
					Int64("order_id", o.ID).
					Str("order_status", o.Status).
					Str("payment_status", newStatus).
					Msg("pago rechazado con pedido ya fuera de pendiente_pago")
				return nil
			}
			if err := orderRepo.UpdateStatus(o.ID, order.StatusPaymentFailed); err != nil {
				return err
			}
			change = &orders.StatusChange{
				OrderID: o.ID, From: o.Status, To: order.StatusPaymentFailed, ChangedAt: uc.now(),
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	// Solo un cambio real de estado reinicia el backoff del polling; una
	// consulta que devuelve el mismo estado sigue contando como intento.
	if statusChanged {
		uc.resetPollingState(ctx, orderID)
	}

	if change != nil {
		if client, cerr := uc.clients.GetByID(uc.clientIDOf(orderID)); cerr == nil {
			change.ClientName = client.Name
			change.ClientEmail = client.Email
		}
		uc.dispatchNotification(*change)
	}
	uc.log.Info().
		Int64("order_id", orderID).
		Str("gateway_status", gp.Status).
		Str("status", newStatus).
		Msg("estado de pago conciliado")
	return statusChanged, nil
}

func (uc *UseCase) clientIDOf(orderID int64) int64 {
	o, err := uc.orders.GetByID(orderID)
	if err != nil {
		return 0
	}
	return o.ClientID
}

func (uc *UseCase) resetPollingState(ctx context.Context, orderID int64) {
	key := fmt.Sprintf("%s%d", attemptsKeyPrefix, orderID)
	if err := uc.store.SetInt64(ctx, key, 0, pollingStateTTL); err != nil {
		uc.log.Warn().Err(err).Int64("order_id", orderID).Msg("no se pudo reiniciar el backoff")
	}
}

func (uc *UseCase) dispatchNotification(change orders.StatusChange) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := uc.notifier.OrderStatusChanged(ctx, change); err != nil {
			uc.log.Warn().Err(err).Int64("order_id", change.OrderID).
				Msg("no se pudo notificar el cambio de estado")
		}
	}()
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
