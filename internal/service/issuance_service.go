package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/events"
	"github.com/mapease/checkin-service/internal/observability"
	"github.com/mapease/checkin-service/internal/qrtoken"
	"github.com/mapease/checkin-service/internal/storage"
	apperrors "github.com/mapease/checkin-service/pkg/util/errorutil"
)

// ImageStore keeps rendered QR images outside the process and returns a link to them.
type ImageStore interface {
	PutPNG(ctx context.Context, key string, png []byte) (string, error)
}

// IssueInput identifies whom a token admits.
type IssueInput struct {
	RegistrationID string
	EventID        string
	UserID         string
	// OperatorID is the approving operator, if any.
	OperatorID *string
}

// IssuedToken is a freshly encoded check-in token.
type IssuedToken struct {
	Token     domain.Token
	Text      string
	PNG       []byte
	DataURI   string
	ImageURL  string
	ExpiresAt time.Time
}

// Image returns the link to deliver: the stored object when there is one, the data URI otherwise.
func (t *IssuedToken) Image() string {
	if t.ImageURL != "" {
		return t.ImageURL
	}
	return t.DataURI
}

// IssuanceService builds and encodes check-in tokens.
type IssuanceService struct {
	codec      *qrtoken.Codec
	images     ImageStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	window     time.Duration
	now        func() time.Time
}

// IssuanceDependencies bundles collaborators for the issuance service.
// Images, Dispatcher, Metrics and Logger are optional.
type IssuanceDependencies struct {
	Codec      *qrtoken.Codec
	Images     ImageStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Window     time.Duration
	Clock      func() time.Time
}

// NewIssuanceService builds the service.
func NewIssuanceService(deps IssuanceDependencies) *IssuanceService {
	s := &IssuanceService{
		codec:      deps.Codec,
		images:     deps.Images,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		window:     deps.Window,
		now:        deps.Clock,
	}
	if s.codec == nil {
		s.codec = qrtoken.NewCodec(qrtoken.DefaultOptions())
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.window <= 0 {
		s.window = domain.DefaultTokenValidity
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Issue stamps a token with the current time, encodes it and announces it.
// Encoding failures surface as ENCODING_FAILED; a failed image upload falls
// back to the inline data URI.
func (s *IssuanceService) Issue(ctx context.Context, in IssueInput) (*IssuedToken, error) {
	issued, err := s.Prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	s.Announce(ctx, issued, in.OperatorID)
	return issued, nil
}

// Prepare stamps and encodes a token without announcing it. Callers that
// must commit a state change first call Announce once it holds.
func (s *IssuanceService) Prepare(ctx context.Context, in IssueInput) (*IssuedToken, error) {
	tok := domain.Token{
		RegistrationID: strings.TrimSpace(in.RegistrationID),
		EventID:        strings.TrimSpace(in.EventID),
		UserID:         strings.TrimSpace(in.UserID),
		IssuedAt:       s.now().UnixMilli(),
	}

	img, err := s.codec.Encode(tok)
	if err != nil {
		var encErr *qrtoken.EncodingError
		if errors.As(err, &encErr) {
			return nil, apperrors.NewUnprocessable("ENCODING_FAILED", "token could not be encoded: "+encErr.Reason, err)
		}
		return nil, err
	}

	issued := &IssuedToken{
		Token:     tok,
		Text:      img.Text,
		PNG:       img.PNG,
		DataURI:   img.DataURI,
		ExpiresAt: tok.ExpiresAt(s.window),
	}

	if s.images != nil {
		url, err := s.images.PutPNG(ctx, storage.QRKey(tok.EventID, tok.RegistrationID, tok.IssuedAt), img.PNG)
		if err != nil {
			s.logger.Warn("qr image upload failed; delivering inline", zap.String("registration_id", tok.RegistrationID), zap.Error(err))
		} else {
			issued.ImageURL = url
		}
	}
	return issued, nil
}

// Announce counts the issued token and publishes token_issued.
func (s *IssuanceService) Announce(ctx context.Context, issued *IssuedToken, operatorID *string) {
	tok := issued.Token
	s.metrics.RecordIssued()
	s.logger.Info("token issued",
		zap.String("registration_id", tok.RegistrationID),
		zap.String("event_id", tok.EventID),
		zap.Time("expires_at", issued.ExpiresAt))

	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(events.EventTokenIssued, tok.EventID, tok.RegistrationID, events.Actor{OperatorID: operatorID}, tok.IssuedTime(),
		events.TokenIssuedPayload{
			UserID:    tok.UserID,
			IssuedAt:  tok.IssuedTime().UTC(),
			ExpiresAt: issued.ExpiresAt.UTC(),
			ImageURL:  issued.ImageURL,
		})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("token_issued handlers failed", zap.Error(err))
	}
}
