package repository

import "github.com/GiancarloGO/master-color-api/internal/domain/entity"

// UserRepository define el puerto de usuarios del back office.
type UserRepository interface {
	GetByID(id int64) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
}
