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

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id, name, email, phone, document_type, document_num, password_hash, verified_at, created_at, updated_at`

// ClientRepo implementación de ClientRepository sobre PostgreSQL (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador de clientes. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.DocumentType, &c.DocumentNum,
		&c.PasswordHash, &c.VerifiedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(id int64) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.q.QueryRow(context.Background(), query, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, err
}

// GetByEmail obtiene un cliente por email (único).
func (r *ClientRepo) GetByEmail(email string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = $1`
	c, err := scanClient(r.q.QueryRow(context.Background(), query, email))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get client by email: %w", err)
	}
	return c, err
}

// GetAddress obtiene una dirección solo si pertenece al cliente.
func (r *ClientRepo) GetAddress(clientID, addressID int64) (*entity.Address, error) {
	query := `
		SELECT id, client_id, line, district, city, reference, is_default, created_at
		FROM client_addresses WHERE id = $1 AND client_id = $2`
	var a entity.Address
	err := r.q.QueryRow(context.Background(), query, addressID, clientID).Scan(
		&a.ID, &a.ClientID, &a.Line, &a.District, &a.City, &a.Reference,
		&a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get client address: %w", err)
	}
	return &a, nil
}
