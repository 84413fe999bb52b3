package domain

import "time"

// RegistrationStatus enumerates approval states.
type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

// Registration is an attendee's request to attend an event.
type Registration struct {
	ID        string
	EventID   string
	UserID    string
	Name      string
	Email     string
	Phone     string
	Status    RegistrationStatus
	QRCode    *string
	IssuedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPending reports whether the registration still awaits a decision.
func (r *Registration) IsPending() bool {
	return r.Status == RegistrationStatusPending
}
