package entity

import "time"

// Client representa un cliente de la tienda (comprador).
type Client struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	DocumentType string // DNI, CE, RUC, Pasaporte
	DocumentNum  string
	PasswordHash string
	VerifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Address dirección de entrega de un cliente.
type Address struct {
	ID        int64
	ClientID  int64
	Line      string
	District  string
	City      string
	Reference string
	IsDefault bool
	CreatedAt time.Time
}
