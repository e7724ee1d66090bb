package repository

import "github.com/GiancarloGO/master-color-api/internal/domain/entity"

// ProductRepository define el puerto de productos.
type ProductRepository interface {
	Create(p *entity.Product) error
	GetByID(id int64) (*entity.Product, error)
	List(limit, offset int) ([]entity.Product, error)
	Update(p *entity.Product) error
}
