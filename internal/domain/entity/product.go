package entity

import "time"

// Product representa un producto del catálogo.
type Product struct {
	ID          int64
	Name        string
	SKU         string
	Description string
	ImageURL    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
