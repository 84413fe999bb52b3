// Package ledger records which check-in tokens have been used.
//
// Every implementation makes TryConsume an atomic conditional write, so for a
// given registration id exactly one caller ever observes true.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapease/checkin-service/internal/domain"
)

// ErrUnavailable wraps every storage or transport failure. Callers must not
// admit entry when they see it.
var ErrUnavailable = errors.New("consumption ledger unavailable")

// Ledger is the authoritative single-use record.
type Ledger interface {
	// IsConsumed reports whether the registration's token has been used.
	IsConsumed(ctx context.Context, registrationID string) (bool, error)
	// TryConsume marks rec.RegistrationID consumed. It returns false when a
	// previous call already did so.
	TryConsume(ctx context.Context, rec domain.ConsumptionRecord) (bool, error)
	// Record returns the consumption entry, or nil when there is none.
	Record(ctx context.Context, registrationID string) (*domain.ConsumptionRecord, error)
	Ping(ctx context.Context) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("ledger %s: %w: %w", op, ErrUnavailable, err)
}

type timeoutLedger struct {
	next    Ledger
	timeout time.Duration
}

// WithTimeout bounds every call to next. A non-positive timeout returns next unchanged.
func WithTimeout(next Ledger, timeout time.Duration) Ledger {
	if timeout <= 0 {
		return next
	}
	return &timeoutLedger{next: next, timeout: timeout}
}

func (l *timeoutLedger) IsConsumed(ctx context.Context, registrationID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.next.IsConsumed(ctx, registrationID)
}

func (l *timeoutLedger) TryConsume(ctx context.Context, rec domain.ConsumptionRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.next.TryConsume(ctx, rec)
}

func (l *timeoutLedger) Record(ctx context.Context, registrationID string) (*domain.ConsumptionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.next.Record(ctx, registrationID)
}

func (l *timeoutLedger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.next.Ping(ctx)
}
