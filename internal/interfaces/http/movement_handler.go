package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GiancarloGO/master-color-api/internal/application/dto"
	"github.com/GiancarloGO/master-color-api/internal/application/inventory"
)

// MovementHandler maneja las peticiones HTTP de movimientos de inventario
// (back office).
type MovementHandler struct {
	uc *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

func toMovementInput(c *fiber.Ctx, in dto.MovementRequest) inventory.MovementInput {
	input := inventory.MovementInput{
		MovementType:  in.MovementType,
		Reason:        in.Reason,
		VoucherNumber: in.VoucherNumber,
		UserID:        GetUserID(c),
	}
	for _, line := range in.Lines {
		input.Lines = append(input.Lines, inventory.MovementLineInput{
			StockID:   line.StockID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return input
}

// Create registra un movimiento de inventario.
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	created, err := h.uc.CreateMovement(c.Context(), toMovementInput(c, in))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(created))
}

// List lista movimientos paginados.
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.uc.ListMovements(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.ToMovementResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// GetByID devuelve un movimiento con sus líneas.
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	m, err := h.uc.GetMovement(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(m))
}

// Update reemplaza las líneas de un movimiento no anulado.
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	updated, err := h.uc.UpdateMovement(c.Context(), id, toMovementInput(c, in))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(updated))
}

// Cancel anula un movimiento creando el inverso (la historia se preserva).
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	reversal, err := h.uc.CancelMovement(c.Context(), id, GetUserID(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(reversal))
}

// Delete revierte y borra un movimiento (corrección de digitación).
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	if err := h.uc.DeleteMovement(c.Context(), id); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "movimiento eliminado"})
}
