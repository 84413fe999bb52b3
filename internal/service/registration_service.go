package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/events"
	"github.com/mapease/checkin-service/internal/repository"
	apperrors "github.com/mapease/checkin-service/pkg/util/errorutil"
)

var validate = validator.New()

// RegistrationService runs the attendee registration and approval workflow.
type RegistrationService struct {
	registrations repository.RegistrationRepository
	events        repository.EventRepository
	issuance      *IssuanceService
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// RegistrationDependencies bundles collaborators for the registration service.
type RegistrationDependencies struct {
	RegistrationRepo repository.RegistrationRepository
	EventRepo        repository.EventRepository
	Issuance         *IssuanceService
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// RegisterInput describes a registration form submission.
type RegisterInput struct {
	EventID string
	Name    string
	Email   string
	Phone   string
	// UserID links the registration to a known attendee; when empty one is derived from the registration id.
	UserID string
}

// NewRegistrationService builds the service.
func NewRegistrationService(deps RegistrationDependencies) *RegistrationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		registrations: deps.RegistrationRepo,
		events:        deps.EventRepo,
		issuance:      deps.Issuance,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// Register records a pending registration for a known event, approving it
// immediately when the event is open.
// The returned token is nil unless the registration was approved.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*domain.Registration, *IssuedToken, error) {
	reg := &domain.Registration{
		ID:      uuid.NewString(),
		EventID: strings.TrimSpace(in.EventID),
		UserID:  strings.TrimSpace(in.UserID),
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Status:  domain.RegistrationStatusPending,
	}

	details := map[string]any{}
	if reg.EventID == "" {
		details["event_id"] = "required"
	}
	if reg.Name == "" {
		details["name"] = "required"
	}
	if err := validate.Var(reg.Email, "required,email"); err != nil {
		details["email"] = "invalid"
	}
	if len(details) > 0 {
		return nil, nil, apperrors.NewValidationError("invalid registration", details)
	}
	if reg.UserID == "" {
		reg.UserID = "user-" + reg.ID
	}

	event, err := s.events.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("event", map[string]any{"id": reg.EventID})
		}
		return nil, nil, err
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, apperrors.NewConflict("email already registered for this event", map[string]any{"event_id": reg.EventID})
		}
		return nil, nil, err
	}
	s.publish(ctx, events.EventRegistrationCreated, reg, nil)

	if event.ApprovesOnSubmit() {
		return s.Approve(ctx, reg.ID, nil)
	}
	return reg, nil, nil
}

// Approve issues the registration's check-in token and marks it approved.
func (s *RegistrationService) Approve(ctx context.Context, id string, operatorID *string) (*domain.Registration, *IssuedToken, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !reg.IsPending() {
		return nil, nil, apperrors.NewConflict("registration already decided", map[string]any{"status": reg.Status})
	}

	issued, err := s.issuance.Prepare(ctx, IssueInput{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		OperatorID:     operatorID,
	})
	if err != nil {
		return nil, nil, err
	}

	image := issued.Image()
	issuedAt := issued.Token.IssuedTime().UTC()
	reg.Status = domain.RegistrationStatusApproved
	reg.QRCode = &image
	reg.IssuedAt = &issuedAt

	if err := s.transition(ctx, reg); err != nil {
		return nil, nil, err
	}
	s.issuance.Announce(ctx, issued, operatorID)
	s.publish(ctx, events.EventRegistrationApproved, reg, operatorID)
	return reg, issued, nil
}

// Reject marks a pending registration rejected.
func (s *RegistrationService) Reject(ctx context.Context, id string, operatorID *string) (*domain.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reg.IsPending() {
		return nil, apperrors.NewConflict("registration already decided", map[string]any{"status": reg.Status})
	}
	reg.Status = domain.RegistrationStatusRejected
	if err := s.transition(ctx, reg); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventRegistrationRejected, reg, operatorID)
	return reg, nil
}

// Get loads one registration.
func (s *RegistrationService) Get(ctx context.Context, id string) (*domain.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("registration", map[string]any{"id": id})
		}
		return nil, err
	}
	return reg, nil
}

// ListByEvent pages through an event's registrations in submission order.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID string, filter repository.RegistrationFilter) ([]domain.Registration, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case domain.RegistrationStatusPending, domain.RegistrationStatusApproved, domain.RegistrationStatusRejected:
		default:
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": *filter.Status})
		}
	}
	return s.registrations.ListByEvent(ctx, strings.TrimSpace(eventID), filter)
}

func (s *RegistrationService) transition(ctx context.Context, reg *domain.Registration) error {
	err := s.registrations.Transition(ctx, reg, domain.RegistrationStatusPending)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleStatus):
		return apperrors.NewConflict("registration already decided", nil)
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("registration", map[string]any{"id": reg.ID})
	}
	return err
}

func (s *RegistrationService) publish(ctx context.Context, eventType events.EventType, reg *domain.Registration, operatorID *string) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, reg.EventID, reg.ID, events.Actor{OperatorID: operatorID}, reg.UpdatedAt,
		events.RegistrationDecisionPayload{Status: string(reg.Status), Email: reg.Email, Name: reg.Name})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("registration event handlers failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}
