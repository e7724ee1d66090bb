package payment

import "github.com/GiancarloGO/master-color-api/internal/domain/entity"

// MapStatus proyecta el estado de la pasarela al vocabulario local. Es la
// única función de mapeo: webhook y polling pasan por acá, así los dos
// caminos no pueden divergir. Un estado desconocido se trata como pending
// (se seguirá consultando hasta que la pasarela diga algo reconocible).
func MapStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "pending", "in_process", "in_mediation":
		return entity.PaymentStatusPending
	case "approved", "authorized":
		return entity.PaymentStatusApproved
	case "rejected":
		return entity.PaymentStatusRejected
	case "cancelled":
		return entity.PaymentStatusCancelled
	case "refunded", "charged_back":
		return entity.PaymentStatusRefunded
	}
	return entity.PaymentStatusPending
}
