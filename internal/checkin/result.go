package checkin

import (
	"time"

	"github.com/mapease/checkin-service/internal/domain"
)

// Status tags the outcome of a scan.
type Status string

const (
	StatusDecodeFailed    Status = "DECODE_FAILED"
	StatusMalformed       Status = "MALFORMED"
	StatusExpired         Status = "EXPIRED"
	StatusAlreadyConsumed Status = "ALREADY_CONSUMED"
	StatusAdmitted        Status = "ADMITTED"
)

// Operator-facing messages.
const (
	MessageDecodeFailed    = "invalid format"
	MessageMalformed       = "malformed token"
	MessageExpired         = "expired"
	MessageAlreadyConsumed = "already used"
	MessageAdmitted        = "entry granted"
	MessageRetry           = "cannot verify, retry"
)

var messages = map[Status]string{
	StatusDecodeFailed:    MessageDecodeFailed,
	StatusMalformed:       MessageMalformed,
	StatusExpired:         MessageExpired,
	StatusAlreadyConsumed: MessageAlreadyConsumed,
	StatusAdmitted:        MessageAdmitted,
}

// Message returns the operator text for s.
func (s Status) Message() string {
	return messages[s]
}

// Result is the tagged outcome of validating one scan. Token fields are empty
// when decoding failed; ConsumedAt is set only on admission.
type Result struct {
	Status         Status
	Message        string
	RegistrationID string
	EventID        string
	UserID         string
	Station        string
	IssuedAt       *time.Time
	ExpiresAt      *time.Time
	ConsumedAt     *time.Time
}

// Admitted reports whether entry was granted.
func (r Result) Admitted() bool {
	return r.Status == StatusAdmitted
}

// LedgerStatus is the read-only view of a registration's consumption state.
type LedgerStatus struct {
	RegistrationID string
	Consumed       bool
	Record         *domain.ConsumptionRecord
}
