package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mapease/checkin-service/internal/api/dto"
	"github.com/mapease/checkin-service/internal/auth"
	"github.com/mapease/checkin-service/internal/service"
)

// AuthHandler exposes operator login, logout and enrollment.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{
		"operator": dto.NewOperatorResponse(res.Operator),
		"auth":     dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Enroll handles POST /operators.
func (h *AuthHandler) Enroll(c *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	op, err := h.auth.Enroll(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewOperatorResponse(op))
}
