package order_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/order"
)

var allStatuses = []string{
	order.StatusAwaitingPayment,
	order.StatusPending,
	order.StatusConfirmed,
	order.StatusProcessing,
	order.StatusShipped,
	order.StatusDelivered,
	order.StatusCancelled,
	order.StatusPaymentFailed,
}

// allowed duplica la tabla de transiciones de forma independiente para
// verificar el cierre: todo par fuera de esta tabla (con from != to) debe
// rechazarse.
var allowed = map[string]map[string]bool{
	order.StatusAwaitingPayment: {order.StatusPending: true, order.StatusCancelled: true, order.StatusPaymentFailed: true},
	order.StatusPending:         {order.StatusConfirmed: true, order.StatusCancelled: true},
	order.StatusConfirmed:       {order.StatusProcessing: true, order.StatusCancelled: true},
	order.StatusProcessing:      {order.StatusShipped: true, order.StatusCancelled: true},
	order.StatusShipped:         {order.StatusDelivered: true},
	order.StatusDelivered:       {},
	order.StatusCancelled:       {},
	order.StatusPaymentFailed:   {order.StatusAwaitingPayment: true, order.StatusCancelled: true},
}

// Todo par (from, to) se comporta exactamente según la tabla.
func TestCanTransition_CierreDeTabla(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := from == to || allowed[from][to]
			assert.Equalf(t, want, order.CanTransition(from, to),
				"transición %s -> %s", from, to)
		}
	}
}

// La auto-transición siempre se acepta como no-op.
func TestCanTransition_MismoEstadoEsNoOp(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, order.CanTransition(s, s), s)
	}
}

// Una transición rechazada lleva el par origen/destino para el mensaje al caller.
func TestValidateTransition_ErrorConParOrigenDestino(t *testing.T) {
	err := order.ValidateTransition(order.StatusDelivered, order.StatusShipped)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrInvalidTransition))

	var tErr *domain.InvalidTransitionError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, order.StatusDelivered, tErr.From)
	assert.Equal(t, order.StatusShipped, tErr.To)
}

// Un estado destino fuera del vocabulario se rechaza como entrada inválida.
func TestValidateTransition_EstadoDesconocido(t *testing.T) {
	err := order.ValidateTransition(order.StatusPending, "despachado")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, order.IsTerminal(order.StatusDelivered))
	assert.True(t, order.IsTerminal(order.StatusCancelled))
	assert.False(t, order.IsTerminal(order.StatusAwaitingPayment))
	assert.False(t, order.IsTerminal(order.StatusPaymentFailed))
	assert.False(t, order.IsTerminal("desconocido"))
}

// pago_fallido puede volver a pendiente_pago (reintento de pago).
func TestCanTransition_ReintentoDePago(t *testing.T) {
	assert.True(t, order.CanTransition(order.StatusPaymentFailed, order.StatusAwaitingPayment))
}

func TestCancellableByClient(t *testing.T) {
	assert.True(t, order.CancellableByClient(order.StatusAwaitingPayment))
	assert.True(t, order.CancellableByClient(order.StatusPending))
	assert.True(t, order.CancellableByClient(order.StatusConfirmed))
	assert.False(t, order.CancellableByClient(order.StatusProcessing))
	assert.False(t, order.CancellableByClient(order.StatusShipped))
	assert.False(t, order.CancellableByClient(order.StatusDelivered))
	assert.False(t, order.CancellableByClient(order.StatusCancelled))
}
