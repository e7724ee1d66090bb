package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento y asigna su ID.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (movement_type, reason, voucher_number, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(context.Background(), query,
		m.MovementType, m.Reason, m.VoucherNumber, m.UserID,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento sin sus líneas.
func (r *StockMovementRepo) GetByID(id int64) (*entity.StockMovement, error) {
	query := `
		SELECT id, movement_type, reason, voucher_number, user_id, canceled_at, created_at, updated_at
		FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.MovementType, &m.Reason, &m.VoucherNumber, &m.UserID,
		&m.CanceledAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return &m, nil
}

// GetWithDetails obtiene un movimiento con sus líneas.
func (r *StockMovementRepo) GetWithDetails(id int64) (*entity.StockMovement, error) {
	m, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT id, stock_movement_id, stock_id, quantity, unit_price, previous_stock, new_stock, created_at
		FROM stock_movement_details WHERE stock_movement_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, id)
	if err != nil {
		return nil, fmt.Errorf("get movement details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d entity.MovementDetail
		if err := rows.Scan(
			&d.ID, &d.StockMovementID, &d.StockID, &d.Quantity,
			&d.UnitPrice, &d.PreviousStock, &d.NewStock, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement detail: %w", err)
		}
		m.Details = append(m.Details, d)
	}
	return m, rows.Err()
}

// List devuelve movimientos paginados, los más recientes primero.
func (r *StockMovementRepo) List(limit, offset int) ([]entity.StockMovement, error) {
	query := `
		SELECT id, movement_type, reason, voucher_number, user_id, canceled_at, created_at, updated_at
		FROM stock_movements ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var out []entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.MovementType, &m.Reason, &m.VoucherNumber, &m.UserID,
			&m.CanceledAt, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update modifica la cabecera del movimiento (tipo, motivo, comprobante).
func (r *StockMovementRepo) Update(m *entity.StockMovement) error {
	query := `
		UPDATE stock_movements
		SET movement_type = $2, reason = $3, voucher_number = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, m.ID, m.MovementType, m.Reason, m.VoucherNumber)
	if err != nil {
		return fmt.Errorf("update stock movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkCanceled marca el movimiento como anulado (la fila no se borra).
func (r *StockMovementRepo) MarkCanceled(id int64, at time.Time) error {
	query := `UPDATE stock_movements SET canceled_at = $2, updated_at = now() WHERE id = $1 AND canceled_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("mark movement canceled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el movimiento (las líneas se borran antes con DeleteDetails).
func (r *StockMovementRepo) Delete(id int64) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateDetail persiste una línea del movimiento.
func (r *StockMovementRepo) CreateDetail(d *entity.MovementDetail) error {
	query := `
		INSERT INTO stock_movement_details (stock_movement_id, stock_id, quantity, unit_price, previous_stock, new_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, created_at`
	err := r.q.QueryRow(context.Background(), query,
		d.StockMovementID, d.StockID, d.Quantity, d.UnitPrice, d.PreviousStock, d.NewStock,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create movement detail: %w", err)
	}
	return nil
}

// DeleteDetails borra todas las líneas de un movimiento.
func (r *StockMovementRepo) DeleteDetails(movementID int64) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM stock_movement_details WHERE stock_movement_id = $1`, movementID)
	if err != nil {
		return fmt.Errorf("delete movement details: %w", err)
	}
	return nil
}
