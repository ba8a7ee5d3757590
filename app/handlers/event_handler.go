package handlers

import (
	"context"
	"log"
	"time"

	"github.com/campushq/campus-hub/app/dto"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// EventHandlerInterface defines the contract for event handlers
type EventHandlerInterface interface {
	CreateEvent(c fiber.Ctx) error
	ListUpcoming(c fiber.Ctx) error
	ListByClub(c fiber.Ctx) error
	RSVP(c fiber.Ctx) error
	Attendees(c fiber.Ctx) error
}

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	flow      businessflow.EventFlow
	validator *validator.Validate
}

// NewEventHandler creates a new event handler
func NewEventHandler(flow businessflow.EventFlow) *EventHandler {
	return &EventHandler{flow: flow, validator: newValidator()}
}

func (h *EventHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *EventHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateEvent schedules a club event
// @Summary Create event
// @Description Schedule an event for a club. Club managers only.
// @Tags Events
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 200 {object} dto.APIResponse{data=dto.CreateEventResponse} "Event created"
// @Failure 400 {object} dto.APIResponse "Validation error or event in the past"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a club manager"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/events [post]
func (h *EventHandler) CreateEvent(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	var req dto.CreateEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.CreateEvent(h.createRequestContext(c, "/api/v1/events"), memberID, &req, metadata)
	if err != nil {
		if businessflow.IsEventInPast(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Event start time must be in the future", "EVENT_IN_PAST", nil)
		}
		if businessflow.IsClubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Club not found", "CLUB_NOT_FOUND", nil)
		}
		if businessflow.IsClubInactive(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Club is inactive", "CLUB_INACTIVE", nil)
		}
		if businessflow.IsClubAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only club managers can schedule events", "CLUB_ACCESS_DENIED", nil)
		}
		log.Println("Create event failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create event", "CREATE_EVENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"event": res.Event,
	})
}

// ListUpcoming returns a page of upcoming events
// @Summary List upcoming events
// @Description List events that have not started yet, soonest first
// @Tags Events
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListEventsResponse} "Events listed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/events [get]
func (h *EventHandler) ListUpcoming(c fiber.Ctx) error {
	page := parsePagination(c)

	res, err := h.flow.ListUpcoming(h.createRequestContext(c, "/api/v1/events"), page)
	if err != nil {
		log.Println("List events failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list events", "LIST_EVENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Events retrieved successfully", fiber.Map{
		"events": res.Events,
		"total":  res.Total,
	})
}

// ListByClub returns a page of a club's events
// @Summary List club events
// @Description List a club's events, soonest first
// @Tags Events
// @Produce json
// @Param id path int true "Club ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListEventsResponse} "Events listed"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs/{id}/events [get]
func (h *EventHandler) ListByClub(c fiber.Ctx) error {
	clubID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid club ID", "INVALID_CLUB_ID", nil)
	}

	page := parsePagination(c)

	res, err := h.flow.ListByClub(h.createRequestContext(c, "/api/v1/clubs/:id/events"), clubID, page)
	if err != nil {
		if businessflow.IsClubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Club not found", "CLUB_NOT_FOUND", nil)
		}
		log.Println("List club events failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list events", "LIST_EVENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Events retrieved successfully", fiber.Map{
		"events": res.Events,
		"total":  res.Total,
	})
}

// RSVP records the member's response to an event
// @Summary RSVP to event
// @Description Record going or declined for an upcoming event. Re-responding replaces the previous status.
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body dto.RSVPRequest true "Response status"
// @Success 200 {object} dto.APIResponse{data=dto.RSVPResponse} "Response recorded"
// @Failure 400 {object} dto.APIResponse "Event started or invalid status"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Failure 409 {object} dto.APIResponse "Event full"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/events/{id}/rsvp [post]
func (h *EventHandler) RSVP(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	var req dto.RSVPRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.RSVP(h.createRequestContext(c, "/api/v1/events/:id/rsvp"), memberID, eventID, &req)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsEventInPast(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Event has already started", "EVENT_STARTED", nil)
		}
		if businessflow.IsEventFull(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Event is at capacity", "EVENT_FULL", nil)
		}
		if businessflow.IsInvalidRSVPStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Status must be going or declined", "INVALID_RSVP_STATUS", nil)
		}
		log.Println("RSVP failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record response", "RSVP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"status": res.Status,
	})
}

// Attendees returns the members going to an event
// @Summary Event attendees
// @Description List the members who responded going to an event
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventAttendeesResponse} "Attendees listed"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/events/{id}/attendees [get]
func (h *EventHandler) Attendees(c fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event ID", "INVALID_EVENT_ID", nil)
	}

	res, err := h.flow.Attendees(h.createRequestContext(c, "/api/v1/events/:id/attendees"), eventID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		log.Println("Event attendees failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list attendees", "ATTENDEES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Attendees retrieved successfully", fiber.Map{
		"attendees": res.Attendees,
		"total":     res.Total,
	})
}

func (h *EventHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *EventHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
