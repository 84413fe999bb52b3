package dto

import "time"

// ScanRequest carries the text a scanner decoded from a QR image.
type ScanRequest struct {
	Raw     *string `json:"raw" validate:"required"`
	Station string  `json:"station" validate:"max=128"`
}

// ScanResponse is the tagged validation outcome.
type ScanResponse struct {
	Status         string     `json:"status"`
	Message        string     `json:"message"`
	Admitted       bool       `json:"admitted"`
	RegistrationID string     `json:"registration_id,omitempty"`
	EventID        string     `json:"event_id,omitempty"`
	UserID         string     `json:"user_id,omitempty"`
	Station        string     `json:"station,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ConsumedAt     *time.Time `json:"consumed_at,omitempty"`
}

// ConsumptionResponse is a ledger entry.
type ConsumptionResponse struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Station    string    `json:"station,omitempty"`
	ConsumedAt time.Time `json:"consumed_at"`
}

// CheckinStatusResponse reports whether a registration has been admitted.
type CheckinStatusResponse struct {
	RegistrationID string               `json:"registration_id"`
	Consumed       bool                 `json:"consumed"`
	Record         *ConsumptionResponse `json:"record,omitempty"`
}
