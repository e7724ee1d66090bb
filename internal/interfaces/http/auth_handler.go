package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GiancarloGO/master-color-api/internal/application/auth"
	"github.com/GiancarloGO/master-color-api/internal/application/dto"
)

// AuthHandler maneja el login.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login verifica credenciales y devuelve el JWT.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	session, err := h.uc.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.LoginResponse{
		Token: session.Token,
		ID:    session.ID,
		Name:  session.Name,
		Email: session.Email,
		Role:  session.Role,
	})
}
