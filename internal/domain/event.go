package domain

import "time"

// EventAccess distinguishes open events (approved on submit) from closed ones.
type EventAccess string

const (
	EventAccessOpen   EventAccess = "open"
	EventAccessClosed EventAccess = "closed"
)

// Valid reports whether a is a known access mode.
func (a EventAccess) Valid() bool {
	return a == EventAccessOpen || a == EventAccessClosed
}

// Event is a venue occasion attendees register for.
type Event struct {
	ID            string
	Name          string
	LocationName  string
	Access        EventAccess
	// ShareableLink points attendees at the registration form.
	ShareableLink string
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ApprovesOnSubmit reports whether registrations skip manual approval.
func (e *Event) ApprovesOnSubmit() bool {
	return e.Access == EventAccessOpen
}
