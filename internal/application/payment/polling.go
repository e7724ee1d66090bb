package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GiancarloGO/master-color-api/internal/application/orders"
	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/order"
)

// PollResult es el estado consolidado que consume el frontend para decidir
// si sigue consultando y con qué cadencia.
type PollResult struct {
	OrderID            int64
	OrderStatus        string
	PaymentStatus      string
	HasPayment         bool
	ShouldPoll         bool
	NextCheckInSeconds int64
	MaxAttemptsReached bool
}

// backoffDelay devuelve la espera para el intento n: 5·2^n segundos con
// techo en 300 (5, 10, 20, 40, 80, 160, 300, 300, ...).
func backoffDelay(attempts int64) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	// 5·2^7 ya supera el techo; evitar el shift grande.
	if attempts >= 7 {
		return maxPollDelaySeconds * time.Second
	}
	seconds := int64(basePollDelaySeconds) << attempts
	if seconds > maxPollDelaySeconds {
		seconds = maxPollDelaySeconds
	}
	return time.Duration(seconds) * time.Second
}

// CheckPaymentStatus devuelve el estado del pedido y su pago, consultando a
// la pasarela solo cuando el backoff lo permite. Pedidos sin pagar por más
// de 24 horas se cancelan durante la consulta.
func (uc *UseCase) CheckPaymentStatus(ctx context.Context, orderID int64) (*PollResult, error) {
	o, err := uc.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	// Expiración: un pedido que lleva más de 24h esperando pago se cancela.
	if o.Status == order.StatusAwaitingPayment && uc.now().Sub(o.CreatedAt) > unpaidOrderLifetime {
		if err := uc.orders.UpdateStatus(o.ID, order.StatusCancelled); err != nil {
			return nil, err
		}
		uc.log.Info().Int64("order_id", o.ID).Msg("pedido expirado por falta de pago")
		change := orders.StatusChange{
			OrderID: o.ID, From: o.Status, To: order.StatusCancelled, ChangedAt: uc.now(),
		}
		if client, cerr := uc.clients.GetByID(o.ClientID); cerr == nil {
			change.ClientName = client.Name
			change.ClientEmail = client.Email
		}
		uc.dispatchNotification(change)
		o.Status = order.StatusCancelled
	}

	result := &PollResult{OrderID: o.ID, OrderStatus: o.Status}

	pay, err := uc.payments.GetByOrderAndMethod(o.ID, entity.PaymentMethodMercadoPago)
	switch {
	case err == nil:
		result.HasPayment = true
		result.PaymentStatus = pay.Status
	case isNotFound(err):
		pay = nil
	default:
		return nil, err
	}

	// Un pago terminal no se vuelve a consultar: el estado local manda.
	if pay != nil && pay.IsTerminal() {
		return result, nil
	}
	// Solo los pedidos esperando pago ameritan polling.
	if o.Status != order.StatusAwaitingPayment {
		return result, nil
	}

	attemptsKey := fmt.Sprintf("%s%d", attemptsKeyPrefix, o.ID)
	lastCheckKey := fmt.Sprintf("%s%d", lastCheckKeyPrefix, o.ID)

	attempts, _, err := uc.store.GetInt64(ctx, attemptsKey)
	if err != nil {
		return nil, err
	}
	if attempts >= maxPollAttempts {
		// Tras 20 intentos el frontend deja de consultar y sugiere contactar
		// a soporte; un webhook tardío todavía puede resolver el pedido.
		result.MaxAttemptsReached = true
		return result, nil
	}

	delay := backoffDelay(attempts)
	if last, ok, err := uc.store.GetInt64(ctx, lastCheckKey); err != nil {
		return nil, err
	} else if ok {
		elapsed := uc.now().Sub(time.Unix(last, 0))
		if elapsed < delay {
			result.ShouldPoll = true
			result.NextCheckInSeconds = int64((delay - elapsed).Seconds())
			return result, nil
		}
	}

	// Ventana abierta: consultar a la pasarela.
	statusChanged, gatewayErr := uc.refreshFromGateway(ctx, o, pay)
	if err := uc.store.SetInt64(ctx, lastCheckKey, uc.now().Unix(), pollingStateTTL); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo registrar la última consulta")
	}
	if gatewayErr != nil {
		switch {
		case errors.Is(gatewayErr, domain.ErrGatewayUnavailable):
			// Pasarela caída: se responde el estado local y se cuenta el intento.
			uc.log.Warn().Err(gatewayErr).Int64("order_id", o.ID).Msg("pasarela no disponible durante el polling")
		case isNotFound(gatewayErr):
			// La pasarela todavía no registra el pago; se reintenta más tarde.
			uc.log.Warn().Err(gatewayErr).Int64("order_id", o.ID).Msg("pago aún no visible en la pasarela")
		default:
			return nil, gatewayErr
		}
	}

	if statusChanged {
		// applyGatewayStatus ya reinició el contador al persistir el cambio.
		attempts = 0
	} else {
		if _, err := uc.store.Incr(ctx, attemptsKey, pollingStateTTL); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo incrementar el contador de intentos")
		}
		attempts++
	}

	// Releer el estado consolidado después de la conciliación.
	if refreshed, err := uc.orders.GetByID(o.ID); err == nil {
		result.OrderStatus = refreshed.Status
	}
	if pay2, err := uc.payments.GetByOrderAndMethod(o.ID, entity.PaymentMethodMercadoPago); err == nil {
		result.HasPayment = true
		result.PaymentStatus = pay2.Status
		if pay2.IsTerminal() {
			return result, nil
		}
	}
	if result.OrderStatus != order.StatusAwaitingPayment {
		return result, nil
	}
	if attempts >= maxPollAttempts {
		result.MaxAttemptsReached = true
		return result, nil
	}
	result.ShouldPoll = true
	result.NextCheckInSeconds = int64(backoffDelay(attempts).Seconds())
	return result, nil
}

// refreshFromGateway consulta el pago en la pasarela y aplica el estado si lo
// encuentra. Devuelve si el estado local del pago cambió.
func (uc *UseCase) refreshFromGateway(ctx context.Context, o *entity.Order, pay *entity.Payment) (bool, error) {
	var gp *GatewayPayment
	if pay != nil && pay.ExternalID != "" {
		fetched, err := uc.gateway.FetchPayment(ctx, pay.ExternalID)
		if err != nil {
			return false, err
		}
		gp = fetched
	} else {
		found, err := uc.gateway.SearchByReference(ctx, fmt.Sprintf("%d", o.ID))
		if err != nil {
			return false, err
		}
		if len(found) == 0 {
			// El cliente todavía no inició el pago en el checkout.
			return false, nil
		}
		gp = mostRelevantPayment(found)
	}

	return uc.applyGatewayStatus(ctx, o.ID, gp)
}

// mostRelevantPayment elige el pago que manda cuando la búsqueda devuelve
// varios intentos: un aprobado gana siempre; si no hay, el último pending;
// en el peor caso, el último de la lista.
func mostRelevantPayment(found []GatewayPayment) *GatewayPayment {
	var pending *GatewayPayment
	for i := range found {
		switch MapStatus(found[i].Status) {
		case entity.PaymentStatusApproved:
			return &found[i]
		case entity.PaymentStatusPending:
			pending = &found[i]
		}
	}
	if pending != nil {
		return pending
	}
	return &found[len(found)-1]
}
