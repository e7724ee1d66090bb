package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, order_id, payment_method, payment_code, amount, currency, status, external_id, external_response, created_at, updated_at`

// PaymentRepo implementación de PaymentRepository sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador de pagos. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.PaymentMethod, &p.PaymentCode,
		&p.Amount, &p.Currency, &p.Status, &p.ExternalID, &p.ExternalResponse,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create persiste un pago y asigna su ID.
func (r *PaymentRepo) Create(p *entity.Payment) error {
	query := `
		INSERT INTO payments (order_id, payment_method, payment_code, amount, currency, status, external_id, external_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(context.Background(), query,
		p.OrderID, p.PaymentMethod, p.PaymentCode, p.Amount, p.Currency,
		p.Status, p.ExternalID, p.ExternalResponse,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por su ID.
func (r *PaymentRepo) GetByID(id int64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(context.Background(), query, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, err
}

// GetByOrderAndMethod devuelve el pago de un pedido para un método dado.
func (r *PaymentRepo) GetByOrderAndMethod(orderID int64, method string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 AND payment_method = $2`
	p, err := scanPayment(r.q.QueryRow(context.Background(), query, orderID, method))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get payment by order: %w", err)
	}
	return p, err
}

// Update persiste estado, referencias externas y payload crudo del pago.
func (r *PaymentRepo) Update(p *entity.Payment) error {
	query := `
		UPDATE payments
		SET payment_code = $2, status = $3, external_id = $4, external_response = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		p.ID, p.PaymentCode, p.Status, p.ExternalID, p.ExternalResponse,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
