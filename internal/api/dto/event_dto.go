package dto

import (
	"time"

	"github.com/mapease/checkin-service/internal/domain"
)

// CreateEventRequest payload for creating an event.
type CreateEventRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	LocationName string `json:"location_name" validate:"required,max=200"`
	Type         string `json:"type" validate:"required,oneof=open closed"`
}

// EventResponse is the dashboard view of an event.
type EventResponse struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	LocationName  string             `json:"location_name"`
	Type          domain.EventAccess `json:"type"`
	ShareableLink string             `json:"shareable_link"`
	CreatedBy     *string            `json:"created_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewEventResponse maps an event.
func NewEventResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:            event.ID,
		Name:          event.Name,
		LocationName:  event.LocationName,
		Type:          event.Access,
		ShareableLink: event.ShareableLink,
		CreatedBy:     event.CreatedBy,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
	}
}
