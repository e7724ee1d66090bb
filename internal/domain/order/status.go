// Package order contiene la máquina de estados de un pedido.
package order

import "github.com/GiancarloGO/master-color-api/internal/domain"

// Estados de un pedido (vocabulario de la API).
const (
	StatusAwaitingPayment = "pendiente_pago" // creado, sin pago confirmado
	StatusPending         = "pendiente"      // pago aprobado, pendiente de confirmación
	StatusConfirmed       = "confirmado"
	StatusProcessing      = "procesando"
	StatusShipped         = "enviado"
	StatusDelivered       = "entregado"     // terminal
	StatusCancelled       = "cancelado"     // terminal
	StatusPaymentFailed   = "pago_fallido"  // puede volver a pendiente_pago
)

// transitions es la tabla cerrada de transiciones permitidas.
// La auto-transición (mismo estado) se permite siempre como no-op.
var transitions = map[string][]string{
	StatusAwaitingPayment: {StatusPending, StatusCancelled, StatusPaymentFailed},
	StatusPending:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusProcessing, StatusCancelled},
	StatusProcessing:      {StatusShipped, StatusCancelled},
	StatusShipped:         {StatusDelivered},
	StatusDelivered:       {},
	StatusCancelled:       {},
	StatusPaymentFailed:   {StatusAwaitingPayment, StatusCancelled},
}

// ValidStatus verifica que s pertenezca al vocabulario de estados.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition indica si el cambio from -> to está permitido por la tabla.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition devuelve InvalidTransitionError con el par origen/destino
// si el cambio no está permitido.
func ValidateTransition(from, to string) error {
	if !ValidStatus(to) {
		return domain.ErrInvalidInput
	}
	if !CanTransition(from, to) {
		return &domain.InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal indica si el estado no admite más transiciones.
func IsTerminal(s string) bool {
	return len(transitions[s]) == 0 && ValidStatus(s)
}

// CancellableByClient lista los estados desde los que el propio cliente puede
// cancelar su pedido.
func CancellableByClient(s string) bool {
	switch s {
	case StatusAwaitingPayment, StatusPending, StatusConfirmed:
		return true
	}
	return false
}
