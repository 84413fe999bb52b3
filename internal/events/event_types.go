package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTokenIssued          EventType = "token_issued"
	EventCheckinAdmitted      EventType = "checkin_admitted"
	EventCheckinRejected      EventType = "checkin_rejected"
	EventRegistrationCreated  EventType = "registration_created"
	EventRegistrationApproved EventType = "registration_approved"
	EventRegistrationRejected EventType = "registration_rejected"
)

// Actor identifies who caused an event: an operator, a scanner station, or the system.
type Actor struct {
	OperatorID *string `json:"operator_id,omitempty"`
	Station    string  `json:"station,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	EventID        string      `json:"event_id"`
	RegistrationID string      `json:"registration_id"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, eventID, registrationID string, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		EventID:        eventID,
		RegistrationID: registrationID,
		Actor:          actor,
		Timestamp:      at.UTC(),
		Payload:        payload,
	}
}

// TokenIssuedPayload payload.
type TokenIssuedPayload struct {
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ImageURL  string    `json:"image_url,omitempty"`
}

// CheckinAdmittedPayload payload.
type CheckinAdmittedPayload struct {
	UserID     string    `json:"user_id"`
	ConsumedAt time.Time `json:"consumed_at"`
}

// CheckinRejectedPayload payload. RegistrationID on the event is empty when
// the scanned text could not be decoded.
type CheckinRejectedPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// RegistrationDecisionPayload is shared by the registration lifecycle events.
type RegistrationDecisionPayload struct {
	Status string `json:"status"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
