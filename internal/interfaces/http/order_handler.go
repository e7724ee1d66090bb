package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/GiancarloGO/master-color-api/internal/application/auth"
	"github.com/GiancarloGO/master-color-api/internal/application/dto"
	"github.com/GiancarloGO/master-color-api/internal/application/orders"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP de pedidos. Los clientes operan
// sobre sus propios pedidos; los roles del back office ven todos.
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, err
	}
	return id, nil
}

func isClient(c *fiber.Ctx) bool {
	return GetRole(c) == auth.RoleClient
}

// Create crea un pedido del cliente autenticado.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	if !isClient(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo un cliente puede crear pedidos"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := orders.CreateOrderInput{
		ClientID:          GetUserID(c),
		DeliveryAddressID: in.DeliveryAddressID,
		ShippingCost:      in.ShippingCost,
		Observations:      in.Observations,
	}
	for _, item := range in.Items {
		input.Items = append(input.Items, orders.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	created, err := h.uc.CreateOrder(c.Context(), input)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToOrderResponse(created))
}

// List lista los pedidos: los del cliente autenticado, o todos para el back office.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	var (
		list []entity.Order
		err  error
	)
	if isClient(c) {
		list, err = h.uc.ListClientOrders(c.Context(), GetUserID(c), page.Limit, page.Offset)
	} else {
		list, err = h.uc.ListOrders(c.Context(), page.Limit, page.Offset)
	}
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.ToOrderResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "orders": out})
}

// GetByID devuelve un pedido con sus líneas.
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}

	if isClient(c) {
		o, err := h.uc.GetClientOrder(c.Context(), GetUserID(c), id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(dto.ToOrderResponse(o))
	}
	o, err := h.uc.GetOrder(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(o))
}

// UpdateStatus aplica un cambio de estado administrativo validado por la
// tabla de transiciones.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil || in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "status requerido"})
	}
	o, err := h.uc.UpdateStatus(c.Context(), id, in.Status)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(o))
}

// Cancel cancela el pedido del propio cliente (solo estados tempranos).
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	if !isClient(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "la cancelación administrativa usa PATCH /status"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	o, err := h.uc.CancelByClient(c.Context(), GetUserID(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(o))
}

// Tracking devuelve la línea de tiempo del pedido del cliente.
func (h *OrderHandler) Tracking(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	steps, err := h.uc.TrackingHistory(c.Context(), GetUserID(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.TrackingStepResponse, 0, len(steps))
	for _, s := range steps {
		out = append(out, dto.TrackingStepResponse{Status: s.Status, Reached: s.Reached, Current: s.Current})
	}
	return c.JSON(fiber.Map{"order_id": id, "steps": out})
}
