package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mapease/checkin-service/internal/api/dto"
	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/service"
)

// EventsHandler lets administrators create and inspect events.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// Create handles POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	event, err := h.events.Create(c.UserContext(), service.CreateEventInput{
		Name:         req.Name,
		LocationName: req.LocationName,
		Access:       domain.EventAccess(req.Type),
		CreatedBy:    operatorID(c),
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewEventResponse(event))
}

// Get handles GET /events/:eventId.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.events.Get(c.UserContext(), c.Params("eventId"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewEventResponse(event))
}

// List handles GET /events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	list, err := h.events.List(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewEventResponse(&list[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{"page": page, "page_size": pageSize},
	})
}
