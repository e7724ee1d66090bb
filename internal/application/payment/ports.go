package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
)

// PreferenceItem es una línea del checkout enviada a la pasarela.
type PreferenceItem struct {
	Title     string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// PreferenceRequest describe la preferencia de pago a crear.
// ExternalReference lleva el ID del pedido; es el hilo que une la pasarela
// con nuestro lado en webhooks y búsquedas.
type PreferenceRequest struct {
	ExternalReference   string
	Items               []PreferenceItem
	PayerName           string
	PayerEmail          string
	Currency            string
	StatementDescriptor string
	NotificationURL     string
}

// Preference es la preferencia creada en la pasarela.
type Preference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
	Raw              []byte
}

// GatewayPayment es un pago tal como lo reporta la pasarela, con el payload
// crudo para auditoría.
type GatewayPayment struct {
	ID                string
	Status            string // vocabulario de la pasarela, sin mapear
	StatusDetail      string
	ExternalReference string
	TransactionAmount decimal.Decimal
	Raw               []byte
}

// Gateway es el puerto hacia MercadoPago. Las implementaciones aplican sus
// propios timeouts y devuelven ErrGatewayUnavailable ante fallas de
// transporte o respuestas no-2xx (fail closed: nunca se adivina un estado).
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
	// SearchByReference busca pagos por external_reference (ID de pedido).
	SearchByReference(ctx context.Context, externalReference string) ([]GatewayPayment, error)
}

// TxRunner ejecuta fn en una transacción con los repositorios de la
// conciliación: el cambio del pago, el del pedido y el descuento de stock
// confirman o abortan juntos.
type TxRunner interface {
	RunPayment(ctx context.Context, fn func(
		paymentRepo repository.PaymentRepository,
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}
