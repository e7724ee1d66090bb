package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrAlreadyCanceled    = errors.New("el movimiento ya fue anulado")
	ErrNotReversible      = errors.New("el movimiento no admite anulación")
	ErrGatewayUnavailable = errors.New("pasarela de pago no disponible")
)

// InsufficientStockError lleva el producto y el faltante para que el caller
// pueda construir un mensaje útil. Satisface errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s. Disponible: %d, solicitado: %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidTransitionError lleva el par origen/destino de una transición de
// estado rechazada. Satisface errors.Is(err, ErrInvalidTransition).
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición de estado no permitida: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
