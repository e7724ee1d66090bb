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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, client_id, user_id, delivery_address_id, subtotal, shipping_cost, discount, status, observations, created_at, updated_at`

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.ClientID, &o.UserID, &o.DeliveryAddressID,
		&o.Subtotal, &o.ShippingCost, &o.Discount, &o.Status, &o.Observations,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Create persiste un pedido y asigna su ID.
func (r *OrderRepo) Create(o *entity.Order) error {
	query := `
		INSERT INTO orders (client_id, user_id, delivery_address_id, subtotal, shipping_cost, discount, status, observations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(context.Background(), query,
		o.ClientID, o.UserID, o.DeliveryAddressID,
		o.Subtotal, o.ShippingCost, o.Discount, o.Status, o.Observations,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido sin sus líneas.
func (r *OrderRepo) GetByID(id int64) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, err
}

// GetWithDetails obtiene un pedido con sus líneas.
func (r *OrderRepo) GetWithDetails(id int64) (*entity.Order, error) {
	o, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_details WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, id)
	if err != nil {
		return nil, fmt.Errorf("get order details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d entity.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.UnitPrice, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		o.Details = append(o.Details, d)
	}
	return o, rows.Err()
}

// GetByClient obtiene un pedido solo si pertenece al cliente.
func (r *OrderRepo) GetByClient(clientID, orderID int64) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND client_id = $2`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, orderID, clientID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get order by client: %w", err)
	}
	return o, err
}

// List devuelve pedidos paginados, los más recientes primero.
func (r *OrderRepo) List(limit, offset int) ([]entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY id DESC LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

// ListByClient devuelve los pedidos de un cliente, los más recientes primero.
func (r *OrderRepo) ListByClient(clientID int64, limit, offset int) ([]entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE client_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	return r.list(query, clientID, limit, offset)
}

func (r *OrderRepo) list(query string, args ...any) ([]entity.Order, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(
			&o.ID, &o.ClientID, &o.UserID, &o.DeliveryAddressID,
			&o.Subtotal, &o.ShippingCost, &o.Discount, &o.Status, &o.Observations,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus cambia el estado del pedido.
func (r *OrderRepo) UpdateStatus(id int64, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateDetail persiste una línea del pedido.
func (r *OrderRepo) CreateDetail(d *entity.OrderDetail) error {
	query := `
		INSERT INTO order_details (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		d.OrderID, d.ProductID, d.Quantity, d.UnitPrice, d.Subtotal,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("create order detail: %w", err)
	}
	return nil
}
