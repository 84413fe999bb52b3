package dto

import (
	"time"

	"github.com/mapease/checkin-service/internal/domain"
)

// RegisterRequest is the public registration form.
type RegisterRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"required,email,max=320"`
	Phone  string `json:"phone" validate:"max=40"`
	UserID string `json:"user_id" validate:"max=256"`
}

// RegistrationResponse is the public view of a registration.
type RegistrationResponse struct {
	ID        string                    `json:"id"`
	EventID   string                    `json:"event_id"`
	UserID    string                    `json:"user_id"`
	Name      string                    `json:"name"`
	Email     string                    `json:"email"`
	Phone     string                    `json:"phone,omitempty"`
	Status    domain.RegistrationStatus `json:"status"`
	QRCode    *string                   `json:"qr_code,omitempty"`
	IssuedAt  *time.Time                `json:"issued_at,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// NewRegistrationResponse maps a registration.
func NewRegistrationResponse(reg *domain.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:        reg.ID,
		EventID:   reg.EventID,
		UserID:    reg.UserID,
		Name:      reg.Name,
		Email:     reg.Email,
		Phone:     reg.Phone,
		Status:    reg.Status,
		QRCode:    reg.QRCode,
		IssuedAt:  reg.IssuedAt,
		CreatedAt: reg.CreatedAt,
		UpdatedAt: reg.UpdatedAt,
	}
}
