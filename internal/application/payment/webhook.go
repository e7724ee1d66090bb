package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GiancarloGO/master-color-api/internal/domain"
)

// WebhookEvent es la forma canónica de una notificación de la pasarela,
// cualquiera sea el formato con el que llegó.
type WebhookEvent struct {
	PaymentID string
	Topic     string // "payment", "merchant_order", ...
	Action    string // solo formato nuevo: "payment.updated", etc.
	// DedupKey identifica la entrega para la deduplicación. Reintentos de la
	// misma notificación producen la misma clave.
	DedupKey string
}

// flexibleID acepta el ID como número o como string: la pasarela usa ambos
// según el formato y la versión de la notificación.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexibleID(s)
	return nil
}

type webhookBody struct {
	// Formato nuevo (webhooks): {"action":"payment.updated","type":"payment","data":{"id":"123"}}
	Action string `json:"action"`
	Type   string `json:"type"`
	Data   struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
	// Formato viejo (IPN): {"id":123,"topic":"payment"}
	ID    flexibleID `json:"id"`
	Topic string     `json:"topic"`
}

// ParseWebhook normaliza los dos formatos de notificación en un WebhookEvent.
// Devuelve ErrInvalidInput si el cuerpo no corresponde a ninguno.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var raw webhookBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: cuerpo de webhook ilegible", domain.ErrInvalidInput)
	}

	// Formato nuevo: type + data.id.
	if raw.Type != "" && raw.Data.ID != "" {
		return &WebhookEvent{
			PaymentID: string(raw.Data.ID),
			Topic:     raw.Type,
			Action:    raw.Action,
			DedupKey:  fmt.Sprintf("%s_%s_%s", raw.Data.ID, raw.Type, raw.Action),
		}, nil
	}
	// Formato viejo: id + topic.
	if raw.Topic != "" && raw.ID != "" {
		return &WebhookEvent{
			PaymentID: string(raw.ID),
			Topic:     raw.Topic,
			DedupKey:  fmt.Sprintf("%s_%s", raw.ID, raw.Topic),
		}, nil
	}
	return nil, fmt.Errorf("%w: formato de webhook desconocido", domain.ErrInvalidInput)
}
