package entity

import "time"

// SystemUserID es el actor usado por movimientos generados por la aplicación
// (ej. descuento de stock al aprobarse un pago) cuando no hay operador.
const SystemUserID int64 = 1

// User representa un usuario del back office (operador/administrador).
type User struct {
	ID           int64
	Name         string
	Email        string
	Role         string // admin, vendedor, almacenero
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
