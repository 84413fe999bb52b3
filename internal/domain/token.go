package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTokenValidity is how long an issued check-in token admits entry.
const DefaultTokenValidity = 24 * time.Hour

// MaxIssuedAt is the largest timestamp a JSON number carries exactly.
const MaxIssuedAt = 1<<53 - 1

// ErrMalformedToken reports a token missing or mistyping a required field.
var ErrMalformedToken = errors.New("malformed token")

// Token is the check-in payload carried inside a QR image. It is never mutated after issuance.
type Token struct {
	RegistrationID string
	EventID        string
	UserID         string
	// IssuedAt is milliseconds since the Unix epoch.
	IssuedAt int64
}

// Validate reports whether every field is present with a usable value.
func (t Token) Validate() error {
	switch {
	case strings.TrimSpace(t.RegistrationID) == "":
		return fmt.Errorf("%w: registrationId is empty", ErrMalformedToken)
	case strings.TrimSpace(t.EventID) == "":
		return fmt.Errorf("%w: eventId is empty", ErrMalformedToken)
	case strings.TrimSpace(t.UserID) == "":
		return fmt.Errorf("%w: userId is empty", ErrMalformedToken)
	case t.IssuedAt < 0:
		return fmt.Errorf("%w: timestamp is negative", ErrMalformedToken)
	case t.IssuedAt > MaxIssuedAt:
		return fmt.Errorf("%w: timestamp exceeds %d", ErrMalformedToken, int64(MaxIssuedAt))
	}
	return nil
}

// IssuedTime returns IssuedAt as a time.Time.
func (t Token) IssuedTime() time.Time {
	return time.UnixMilli(t.IssuedAt)
}

// ExpiresAt is the first instant at which the token is no longer valid.
func (t Token) ExpiresAt(window time.Duration) time.Time {
	return time.UnixMilli(t.IssuedAt + window.Milliseconds())
}

// Expired applies the validity rule now - issuedAt >= window, in milliseconds.
func (t Token) Expired(now time.Time, window time.Duration) bool {
	return now.UnixMilli()-t.IssuedAt >= window.Milliseconds()
}
