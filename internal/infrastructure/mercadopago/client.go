// Package mercadopago implementa el puerto payment.Gateway contra la API
// REST de MercadoPago. Toda falla de transporte o respuesta no-2xx se
// traduce a ErrGatewayUnavailable: ante la duda no se adivina ningún estado
// de pago.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GiancarloGO/master-color-api/internal/application/payment"
	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/pkg/config"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

var _ payment.Gateway = (*Client)(nil)

// Client es el cliente HTTP de MercadoPago.
type Client struct {
	baseURL           string
	accessToken       string
	preferenceTimeout time.Duration
	queryTimeout      time.Duration
	httpClient        *http.Client
	log               *logger.Logger
}

// NewClient construye el cliente con los timeouts de la configuración.
func NewClient(cfg config.MercadoPagoConfig, log *logger.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.mercadopago.com"
	}
	return &Client{
		baseURL:           base,
		accessToken:       cfg.AccessToken,
		preferenceTimeout: cfg.PreferenceTimeout,
		queryTimeout:      cfg.QueryTimeout,
		httpClient:        &http.Client{},
		log:               log,
	}
}

type preferenceItem struct {
	Title      string          `json:"title"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

type preferencePayer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type preferenceRequest struct {
	Items               []preferenceItem `json:"items"`
	Payer               preferencePayer  `json:"payer"`
	ExternalReference   string           `json:"external_reference"`
	NotificationURL     string           `json:"notification_url,omitempty"`
	StatementDescriptor string           `json:"statement_descriptor,omitempty"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference crea una preferencia de checkout.
func (c *Client) CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error) {
	body := preferenceRequest{
		Payer:               preferencePayer{Name: req.PayerName, Email: req.PayerEmail},
		ExternalReference:   req.ExternalReference,
		NotificationURL:     req.NotificationURL,
		StatementDescriptor: req.StatementDescriptor,
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, preferenceItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: req.Currency,
		})
	}

	raw, err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, c.preferenceTimeout)
	if err != nil {
		return nil, err
	}
	var resp preferenceResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: respuesta de preferencia ilegible", domain.ErrGatewayUnavailable)
	}
	return &payment.Preference{
		ID:               resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
		Raw:              raw,
	}, nil
}

type paymentResponse struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
}

func (p *paymentResponse) toGatewayPayment(raw []byte) *payment.GatewayPayment {
	return &payment.GatewayPayment{
		ID:                p.ID.String(),
		Status:            p.Status,
		StatusDetail:      p.StatusDetail,
		ExternalReference: p.ExternalReference,
		TransactionAmount: p.TransactionAmount,
		Raw:               raw,
	}
}

// FetchPayment consulta un pago por su ID en la pasarela.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*payment.GatewayPayment, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, c.queryTimeout)
	if err != nil {
		return nil, err
	}
	var resp paymentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: respuesta de pago ilegible", domain.ErrGatewayUnavailable)
	}
	return resp.toGatewayPayment(raw), nil
}

type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// SearchByReference busca los pagos asociados a un external_reference.
func (c *Client) SearchByReference(ctx context.Context, externalReference string) ([]payment.GatewayPayment, error) {
	path := "/v1/payments/search?external_reference=" + externalReference + "&sort=date_created&criteria=desc"
	raw, err := c.do(ctx, http.MethodGet, path, nil, c.queryTimeout)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: respuesta de búsqueda ilegible", domain.ErrGatewayUnavailable)
	}
	out := make([]payment.GatewayPayment, 0, len(resp.Results))
	for _, result := range resp.Results {
		var p paymentResponse
		if err := json.Unmarshal(result, &p); err != nil {
			continue
		}
		out = append(out, *p.toGatewayPayment(result))
	}
	return out, nil
}

// do arma la petición con el Bearer token, aplica el timeout y devuelve el
// cuerpo. 404 en consultas se traduce a ErrNotFound; el resto de los no-2xx
// y las fallas de transporte, a ErrGatewayUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body any, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("fallo de transporte hacia MercadoPago")
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("respuesta de error de MercadoPago")
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
}
