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

// PollHandlerInterface defines the contract for poll handlers
type PollHandlerInterface interface {
	CreatePoll(c fiber.Ctx) error
	ListPolls(c fiber.Ctx) error
	Vote(c fiber.Ctx) error
	Results(c fiber.Ctx) error
	ClosePoll(c fiber.Ctx) error
}

// PollHandler handles poll-related HTTP requests
type PollHandler struct {
	flow      businessflow.PollFlow
	validator *validator.Validate
}

// NewPollHandler creates a new poll handler
func NewPollHandler(flow businessflow.PollFlow) *PollHandler {
	return &PollHandler{flow: flow, validator: newValidator()}
}

func (h *PollHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PollHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatePoll creates a poll with its options
// @Summary Create poll
// @Description Create a poll with two or more options, optionally scoped to a club
// @Tags Polls
// @Accept json
// @Produce json
// @Param request body dto.CreatePollRequest true "Poll question and options"
// @Success 200 {object} dto.APIResponse{data=dto.CreatePollResponse} "Poll created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/polls [post]
func (h *PollHandler) CreatePoll(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	var req dto.CreatePollRequest
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

	res, err := h.flow.CreatePoll(h.createRequestContext(c, "/api/v1/polls"), memberID, &req, metadata)
	if err != nil {
		if businessflow.IsClubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Club not found", "CLUB_NOT_FOUND", nil)
		}
		if businessflow.IsNotClubMember(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this club", "NOT_CLUB_MEMBER", nil)
		}
		log.Println("Create poll failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create poll", "CREATE_POLL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"poll": res.Poll,
	})
}

// ListPolls returns a page of open polls
// @Summary List polls
// @Description List open polls, newest first
// @Tags Polls
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListPollsResponse} "Polls listed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/polls [get]
func (h *PollHandler) ListPolls(c fiber.Ctx) error {
	page := parsePagination(c)

	res, err := h.flow.ListPolls(h.createRequestContext(c, "/api/v1/polls"), page)
	if err != nil {
		log.Println("List polls failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list polls", "LIST_POLLS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Polls retrieved successfully", fiber.Map{
		"polls": res.Polls,
		"total": res.Total,
	})
}

// Vote casts the member's vote on a poll option
// @Summary Vote on poll
// @Description Cast a single vote on one option of an open poll
// @Tags Polls
// @Accept json
// @Produce json
// @Param id path int true "Poll ID"
// @Param request body dto.VoteRequest true "Chosen option"
// @Success 200 {object} dto.APIResponse{data=dto.VoteResponse} "Vote recorded"
// @Failure 400 {object} dto.APIResponse "Poll closed or option invalid"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Poll not found"
// @Failure 409 {object} dto.APIResponse "Already voted"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/polls/{id}/vote [post]
func (h *PollHandler) Vote(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	pollID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid poll ID", "INVALID_POLL_ID", nil)
	}

	var req dto.VoteRequest
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

	res, err := h.flow.Vote(h.createRequestContext(c, "/api/v1/polls/:id/vote"), memberID, pollID, &req)
	if err != nil {
		if businessflow.IsPollNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Poll not found", "POLL_NOT_FOUND", nil)
		}
		if businessflow.IsPollClosed(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Poll is closed", "POLL_CLOSED", nil)
		}
		if businessflow.IsPollOptionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Option does not belong to this poll", "POLL_OPTION_NOT_FOUND", nil)
		}
		if businessflow.IsAlreadyVoted(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "You have already voted on this poll", "ALREADY_VOTED", nil)
		}
		log.Println("Vote failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record vote", "VOTE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, nil)
}

// Results returns tallied votes per option
// @Summary Poll results
// @Description Tallied votes per option, including zero-vote options
// @Tags Polls
// @Produce json
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.PollResultsResponse} "Results retrieved"
// @Failure 404 {object} dto.APIResponse "Poll not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/polls/{id}/results [get]
func (h *PollHandler) Results(c fiber.Ctx) error {
	pollID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid poll ID", "INVALID_POLL_ID", nil)
	}

	res, err := h.flow.Results(h.createRequestContext(c, "/api/v1/polls/:id/results"), pollID)
	if err != nil {
		if businessflow.IsPollNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Poll not found", "POLL_NOT_FOUND", nil)
		}
		log.Println("Poll results failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get poll results", "POLL_RESULTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Poll results retrieved successfully", fiber.Map{
		"poll":        res.Poll,
		"results":     res.Results,
		"total_votes": res.Total,
	})
}

// ClosePoll closes a poll the member created
// @Summary Close poll
// @Description Close an open poll. Only the creator may close it.
// @Tags Polls
// @Produce json
// @Param id path int true "Poll ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClosePollResponse} "Poll closed"
// @Failure 400 {object} dto.APIResponse "Poll already closed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not the poll creator"
// @Failure 404 {object} dto.APIResponse "Poll not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/polls/{id}/close [post]
func (h *PollHandler) ClosePoll(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	pollID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid poll ID", "INVALID_POLL_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.ClosePoll(h.createRequestContext(c, "/api/v1/polls/:id/close"), memberID, pollID, metadata)
	if err != nil {
		if businessflow.IsPollNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Poll not found", "POLL_NOT_FOUND", nil)
		}
		if businessflow.IsPollAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the creator can close this poll", "POLL_ACCESS_DENIED", nil)
		}
		if businessflow.IsPollClosed(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Poll is already closed", "POLL_CLOSED", nil)
		}
		log.Println("Close poll failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to close poll", "CLOSE_POLL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, nil)
}

func (h *PollHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PollHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
