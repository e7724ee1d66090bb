// Package mail implementa el notificador de cambios de estado de pedido
// sobre SMTP.
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/GiancarloGO/master-color-api/internal/application/orders"
	"github.com/GiancarloGO/master-color-api/pkg/config"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

var _ orders.Notifier = (*Notifier)(nil)

// statusLabels traduce el estado interno al texto del correo.
var statusLabels = map[string]string{
	"pendiente_pago": "Pendiente de pago",
	"pendiente":      "Pago recibido",
	"confirmado":     "Confirmado",
	"procesando":     "En preparación",
	"enviado":        "Enviado",
	"entregado":      "Entregado",
	"cancelado":      "Cancelado",
	"pago_fallido":   "Pago fallido",
}

// Notifier envía el correo de cambio de estado al cliente.
type Notifier struct {
	dialer *gomail.Dialer
	from   string
	log    *logger.Logger
}

// NewNotifier construye el notificador SMTP.
func NewNotifier(cfg config.SMTPConfig, log *logger.Logger) *Notifier {
	return &Notifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

// OrderStatusChanged envía el aviso del cambio de estado. Sin email de
// destino no hay nada que mandar.
func (n *Notifier) OrderStatusChanged(ctx context.Context, change orders.StatusChange) error {
	if change.ClientEmail == "" {
		return nil
	}
	label := statusLabels[change.To]
	if label == "" {
		label = change.To
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", change.ClientEmail)
	m.SetHeader("Subject", fmt.Sprintf("Tu pedido #%d: %s", change.OrderID, label))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hola %s,\n\nTu pedido #%d cambió de estado: %s.\n\nGracias por comprar en Master Color.\n",
		change.ClientName, change.OrderID, label,
	))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar correo de estado: %w", err)
	}
	n.log.Info().
		Int64("order_id", change.OrderID).
		Str("to", change.ClientEmail).
		Str("status", change.To).
		Msg("correo de cambio de estado enviado")
	return nil
}
