package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mapease/checkin-service/internal/api/dto"
	"github.com/mapease/checkin-service/internal/domain"
	"github.com/mapease/checkin-service/internal/repository"
	"github.com/mapease/checkin-service/internal/service"
)

// RegistrationsHandler exposes the registration form and the approval panel.
type RegistrationsHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(registrations *service.RegistrationService) *RegistrationsHandler {
	return &RegistrationsHandler{registrations: registrations}
}

// Register handles POST /events/:eventId/registrations.
func (h *RegistrationsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	reg, issued, err := h.registrations.Register(c.UserContext(), service.RegisterInput{
		EventID: c.Params("eventId"),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		UserID:  req.UserID,
	})
	if err != nil {
		return err
	}

	resp := fiber.Map{"registration": dto.NewRegistrationResponse(reg)}
	if issued != nil {
		resp["token"] = issuedResponse(issued)
	}
	return data(c, http.StatusCreated, resp)
}

// List handles GET /events/:eventId/registrations.
func (h *RegistrationsHandler) List(c *fiber.Ctx) error {
	filter := repository.RegistrationFilter{}
	if status := c.Query("status"); status != "" {
		s := domain.RegistrationStatus(status)
		filter.Status = &s
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	regs, err := h.registrations.ListByEvent(c.UserContext(), c.Params("eventId"), filter)
	if err != nil {
		return err
	}
	items := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		items = append(items, dto.NewRegistrationResponse(&regs[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{"page": page, "page_size": pageSize},
	})
}

// Get handles GET /registrations/:id.
func (h *RegistrationsHandler) Get(c *fiber.Ctx) error {
	reg, err := h.registrations.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewRegistrationResponse(reg))
}

// Approve handles POST /registrations/:id/approve.
func (h *RegistrationsHandler) Approve(c *fiber.Ctx) error {
	reg, issued, err := h.registrations.Approve(c.UserContext(), c.Params("id"), operatorID(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{
		"registration": dto.NewRegistrationResponse(reg),
		"token":        issuedResponse(issued),
	})
}

// Reject handles POST /registrations/:id/reject.
func (h *RegistrationsHandler) Reject(c *fiber.Ctx) error {
	reg, err := h.registrations.Reject(c.UserContext(), c.Params("id"), operatorID(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewRegistrationResponse(reg))
}
