package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/repository"
	apperrors "github.com/mapease/checkin-service/pkg/util/errorutil"
)

// EventService manages the events attendees register for.
type EventService struct {
	events    repository.EventRepository
	publicURL string
	logger    *zap.Logger
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo repository.EventRepository
	// PublicURL prefixes shareable registration links.
	PublicURL string
	Logger    *zap.Logger
}

// CreateEventInput describes a new event.
type CreateEventInput struct {
	Name         string
	LocationName string
	Access       domain.EventAccess
	CreatedBy    *string
}

// NewEventService builds the service.
func NewEventService(deps EventDependencies) *EventService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:    deps.EventRepo,
		publicURL: strings.TrimRight(deps.PublicURL, "/"),
		logger:    logger,
	}
}

// Create validates and stores an event, assigning its id and shareable link.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*domain.Event, error) {
	event := &domain.Event{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		LocationName: strings.TrimSpace(in.LocationName),
		Access:       domain.EventAccess(strings.ToLower(strings.TrimSpace(string(in.Access)))),
		CreatedBy:    in.CreatedBy,
	}

	details := map[string]any{}
	if event.Name == "" {
		details["name"] = "required"
	}
	if event.LocationName == "" {
		details["location_name"] = "required"
	}
	if !event.Access.Valid() {
		details["type"] = "oneof open closed"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid event", details)
	}
	event.ShareableLink = s.publicURL + "/register/" + event.ID

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("access", string(event.Access)))
	return event, nil
}

// Get loads one event.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", map[string]any{"id": id})
		}
		return nil, err
	}
	return event, nil
}

// List pages through events, newest first.
func (s *EventService) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	return s.events.List(ctx, limit, offset)
}
