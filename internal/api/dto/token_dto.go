package dto

import "time"

// IssueTokenRequest payload for direct token issuance.
type IssueTokenRequest struct {
	RegistrationID string `json:"registration_id" validate:"required,max=256"`
	EventID        string `json:"event_id" validate:"required,max=256"`
	UserID         string `json:"user_id" validate:"required,max=256"`
}

// TokenPayload mirrors the text embedded in the QR image.
type TokenPayload struct {
	RegistrationID string `json:"registrationId"`
	EventID        string `json:"eventId"`
	UserID         string `json:"userId"`
	Timestamp      int64  `json:"timestamp"`
}

// IssueTokenResponse describes an issued token.
type IssueTokenResponse struct {
	Token     TokenPayload `json:"token"`
	Text      string       `json:"text"`
	Image     string       `json:"image"`
	ImageURL  string       `json:"image_url,omitempty"`
	ExpiresAt time.Time    `json:"expires_at"`
}
