package repository

import "github.com/GiancarloGO/master-color-api/internal/domain/entity"

// ClientRepository define el puerto de clientes y sus direcciones.
type ClientRepository interface {
	GetByID(id int64) (*entity.Client, error)
	GetByEmail(email string) (*entity.Client, error)
	GetAddress(clientID, addressID int64) (*entity.Address, error)
}
