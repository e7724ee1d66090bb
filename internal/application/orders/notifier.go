package orders

import (
	"context"
	"time"
)

// StatusChange describe una transición efectiva de estado de un pedido. Se
// arma con los valores capturados antes y después de persistir el cambio;
// el notificador no vuelve a leer el pedido.
type StatusChange struct {
	OrderID     int64
	ClientName  string
	ClientEmail string
	From        string
	To          string
	ChangedAt   time.Time
}

// Notifier recibe los cambios efectivos de estado (old ≠ new). Las
// implementaciones deben ser seguras para llamarse desde goroutines.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, change StatusChange) error
}

// NopNotifier descarta las notificaciones. Útil cuando el SMTP no está
// configurado y en tests.
type NopNotifier struct{}

func (NopNotifier) OrderStatusChanged(ctx context.Context, change StatusChange) error {
	return nil
}
