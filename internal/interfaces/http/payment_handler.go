package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GiancarloGO/master-color-api/internal/application/dto"
	"github.com/GiancarloGO/master-color-api/internal/application/payment"
)

// PaymentHandler maneja la creación de preferencias de checkout y la consulta
// de estado de pago.
type PaymentHandler struct {
	uc *payment.UseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payment.UseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// CreatePreference crea la preferencia de MercadoPago para el pedido del
// cliente autenticado.
func (h *PaymentHandler) CreatePreference(c *fiber.Ctx) error {
	if !isClient(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo el dueño del pedido puede iniciar el pago"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	pref, err := h.uc.CreatePaymentPreference(c.Context(), GetUserID(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PreferenceResponse{
		PreferenceID:     pref.PreferenceID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
	})
}

// Status devuelve el estado consolidado del pedido y su pago, con la
// recomendación de polling para el frontend.
func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	id, err := paramID(c, "orderId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	res, err := h.uc.CheckPaymentStatus(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	// El intervalo recomendado al frontend tiene un piso de 30 segundos.
	interval := res.NextCheckInSeconds
	if interval < 30 {
		interval = 30
	}
	return c.JSON(dto.PaymentStatusResponse{
		OrderID:       res.OrderID,
		OrderStatus:   res.OrderStatus,
		PaymentStatus: res.PaymentStatus,
		HasPayment:    res.HasPayment,
		Polling: dto.PollingInfo{
			ShouldPoll:          res.ShouldPoll,
			NextCheckInSeconds:  res.NextCheckInSeconds,
			RecommendedInterval: interval,
			MaxAttemptsReached:  res.MaxAttemptsReached,
		},
	})
}
