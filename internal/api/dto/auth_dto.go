package dto

import (
	"time"

	"github.com/mapease/checkin-service/internal/domain"
)

// LoginRequest payload for operator login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EnrollRequest payload for creating an operator.
type EnrollRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OperatorResponse is the public view of an operator.
type OperatorResponse struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Active bool        `json:"active"`
}

// NewOperatorResponse maps an operator.
func NewOperatorResponse(op *domain.Operator) OperatorResponse {
	return OperatorResponse{ID: op.ID, Name: op.Name, Email: op.Email, Role: op.Role, Active: op.Active}
}
