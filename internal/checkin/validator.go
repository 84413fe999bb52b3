// Package checkin decides whether a scanned token admits entry.
//
// Checks run in a fixed order and stop at the first failure: decode, then
// semantic shape, then expiry, then single-use consumption. Only the last
// check touches the ledger, and only an admitted scan writes to it.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/events"
	"github.com/mapease/checkin-service/internal/ledger"
	"github.com/mapease/checkin-service/internal/observability"
	"github.com/mapease/checkin-service/internal/qrtoken"
)

// Validator is safe for concurrent use; the ledger is its only shared state.
type Validator struct {
	ledger     ledger.Ledger
	window     time.Duration
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// Option customises a Validator.
type Option func(*Validator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator creates a validator. A non-positive window falls back to
// domain.DefaultTokenValidity. dispatcher, metrics and logger may be nil.
func NewValidator(l ledger.Ledger, window time.Duration, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger, opts ...Option) *Validator {
	if window <= 0 {
		window = domain.DefaultTokenValidity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Validator{
		ledger:     l,
		window:     window,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Window returns the token validity window.
func (v *Validator) Window() time.Duration {
	return v.window
}

// Scan decodes raw scanner text and validates it.
func (v *Validator) Scan(ctx context.Context, raw, station string) (Result, error) {
	tok, ok := qrtoken.Decode(raw)
	if !ok {
		res := Result{Status: StatusDecodeFailed, Message: MessageDecodeFailed, Station: station}
		v.finish(ctx, res, nil)
		return res, nil
	}
	return v.Validate(ctx, tok, station)
}

// Validate runs the semantic, expiry and consumption checks on a decoded token.
// A ledger failure returns an error wrapping ledger.ErrUnavailable; entry is
// never granted in that case.
func (v *Validator) Validate(ctx context.Context, tok domain.Token, station string) (Result, error) {
	res := Result{
		RegistrationID: tok.RegistrationID,
		EventID:        tok.EventID,
		UserID:         tok.UserID,
		Station:        station,
	}

	if err := tok.Validate(); err != nil {
		res.Status, res.Message = StatusMalformed, MessageMalformed
		v.finish(ctx, res, nil)
		return res, nil
	}

	issuedAt := tok.IssuedTime()
	expiresAt := tok.ExpiresAt(v.window)
	res.IssuedAt, res.ExpiresAt = &issuedAt, &expiresAt

	now := v.now()
	if tok.Expired(now, v.window) {
		res.Status, res.Message = StatusExpired, MessageExpired
		v.finish(ctx, res, nil)
		return res, nil
	}

	consumedAt := now.UTC()
	won, err := v.ledger.TryConsume(ctx, domain.ConsumptionRecord{
		RegistrationID: tok.RegistrationID,
		EventID:        tok.EventID,
		UserID:         tok.UserID,
		Station:        station,
		ConsumedAt:     consumedAt,
	})
	if err != nil {
		if !errors.Is(err, ledger.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ledger.ErrUnavailable, err)
		}
		res.Message = MessageRetry
		v.metrics.RecordScan("UNAVAILABLE")
		v.logger.Error("ledger unavailable during check-in",
			zap.String("registration_id", tok.RegistrationID),
			zap.String("station", station),
			zap.Error(err))
		return res, err
	}
	if !won {
		res.Status, res.Message = StatusAlreadyConsumed, MessageAlreadyConsumed
		v.finish(ctx, res, nil)
		return res, nil
	}

	res.Status, res.Message = StatusAdmitted, MessageAdmitted
	res.ConsumedAt = &consumedAt
	v.finish(ctx, res, &consumedAt)
	return res, nil
}

// Status reports whether a registration's token has been used, without consuming it.
func (v *Validator) Status(ctx context.Context, registrationID string) (LedgerStatus, error) {
	registrationID = strings.TrimSpace(registrationID)
	out := LedgerStatus{RegistrationID: registrationID}
	if registrationID == "" {
		return out, nil
	}
	rec, err := v.ledger.Record(ctx, registrationID)
	if err != nil {
		return out, err
	}
	if rec == nil {
		return out, nil
	}
	out.Consumed = true
	out.Record = rec
	return out, nil
}

func (v *Validator) finish(ctx context.Context, res Result, consumedAt *time.Time) {
	v.metrics.RecordScan(string(res.Status))

	fields := []zap.Field{
		zap.String("status", string(res.Status)),
		zap.String("registration_id", res.RegistrationID),
		zap.String("event_id", res.EventID),
		zap.String("station", res.Station),
	}
	if res.Admitted() {
		v.logger.Info("check-in admitted", fields...)
	} else {
		v.logger.Info("check-in rejected", fields...)
	}

	if v.dispatcher == nil {
		return
	}
	actor := events.Actor{Station: res.Station}
	var event events.Event
	if consumedAt != nil {
		event = events.NewEvent(events.EventCheckinAdmitted, res.EventID, res.RegistrationID, actor, *consumedAt,
			events.CheckinAdmittedPayload{UserID: res.UserID, ConsumedAt: *consumedAt})
	} else {
		event = events.NewEvent(events.EventCheckinRejected, res.EventID, res.RegistrationID, actor, v.now(),
			events.CheckinRejectedPayload{Status: string(res.Status), Message: res.Message, UserID: res.UserID})
	}
	if err := v.dispatcher.Publish(ctx, event); err != nil {
		v.logger.Warn("check-in event handlers failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
