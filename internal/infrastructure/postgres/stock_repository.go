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

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, product_id, quantity, min_stock, max_stock, purchase_price, sale_price, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.ProductID, &s.Quantity, &s.MinStock, &s.MaxStock,
		&s.PurchasePrice, &s.SalePrice, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene el stock por su ID.
func (r *StockRepo) GetByID(id int64) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE id = $1`
	s, err := scanStock(r.q.QueryRow(context.Background(), query, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, err
}

// GetByProductID obtiene el stock de un producto (relación 1:1).
func (r *StockRepo) GetByProductID(productID int64) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE product_id = $1`
	s, err := scanStock(r.q.QueryRow(context.Background(), query, productID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get stock by product: %w", err)
	}
	return s, err
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(id int64) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(context.Background(), query, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, err
}

// GetForUpdateByProduct bloquea la fila de stock de un producto.
func (r *StockRepo) GetForUpdateByProduct(productID int64) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE product_id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(context.Background(), query, productID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get stock for update by product: %w", err)
	}
	return s, err
}

// List devuelve stocks paginados ordenados por producto.
func (r *StockRepo) List(limit, offset int) ([]entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks ORDER BY product_id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()

	var out []entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(
			&s.ID, &s.ProductID, &s.Quantity, &s.MinStock, &s.MaxStock,
			&s.PurchasePrice, &s.SalePrice, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateQuantity fija la cantidad del stock.
func (r *StockRepo) UpdateQuantity(id int64, quantity int64) error {
	query := `UPDATE stocks SET quantity = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantity)
	if err != nil {
		return fmt.Errorf("update stock quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
