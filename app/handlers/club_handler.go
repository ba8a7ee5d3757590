package handlers

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/campushq/campus-hub/app/dto"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ClubHandlerInterface defines the contract for club handlers
type ClubHandlerInterface interface {
	CreateClub(c fiber.Ctx) error
	ListClubs(c fiber.Ctx) error
	MyClubs(c fiber.Ctx) error
	JoinClub(c fiber.Ctx) error
	LeaveClub(c fiber.Ctx) error
	ClubMembers(c fiber.Ctx) error
	UploadLogo(c fiber.Ctx) error
}

// ClubHandler handles club-related HTTP requests
type ClubHandler struct {
	flow      businessflow.ClubFlow
	validator *validator.Validate
}

// NewClubHandler creates a new club handler
func NewClubHandler(flow businessflow.ClubFlow) *ClubHandler {
	return &ClubHandler{flow: flow, validator: newValidator()}
}

func (h *ClubHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ClubHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateClub registers a club owned by the authenticated member
// @Summary Create club
// @Description Register a club. The creator becomes its owner.
// @Tags Clubs
// @Accept json
// @Produce json
// @Param request body dto.CreateClubRequest true "Club name and description"
// @Success 200 {object} dto.APIResponse{data=dto.CreateClubResponse} "Club created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "Club name taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs [post]
func (h *ClubHandler) CreateClub(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	var req dto.CreateClubRequest
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

	res, err := h.flow.CreateClub(h.createRequestContext(c, "/api/v1/clubs"), memberID, &req, metadata)
	if err != nil {
		if businessflow.IsClubNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A club with this name already exists", "CLUB_NAME_TAKEN", nil)
		}
		log.Println("Create club failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create club", "CREATE_CLUB_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"club": res.Club,
	})
}

// ListClubs returns a page of active clubs
// @Summary List clubs
// @Description List active clubs with member counts
// @Tags Clubs
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListClubsResponse} "Clubs listed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs [get]
func (h *ClubHandler) ListClubs(c fiber.Ctx) error {
	page := parsePagination(c)

	res, err := h.flow.ListClubs(h.createRequestContext(c, "/api/v1/clubs"), page)
	if err != nil {
		log.Println("List clubs failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list clubs", "LIST_CLUBS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Clubs retrieved successfully", fiber.Map{
		"clubs": res.Clubs,
		"total": res.Total,
	})
}

// MyClubs returns the clubs the member belongs to
// @Summary My clubs
// @Description List the clubs the authenticated member belongs to
// @Tags Clubs
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListClubsResponse} "Clubs listed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs/mine [get]
func (h *ClubHandler) MyClubs(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	res, err := h.flow.MyClubs(h.createRequestContext(c, "/api/v1/clubs/mine"), memberID)
	if err != nil {
		log.Println("My clubs failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list clubs", "LIST_CLUBS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Clubs retrieved successfully", fiber.Map{
		"clubs": res.Clubs,
		"total": res.Total,
	})
}

// JoinClub enrolls the member in a club
// @Summary Join club
// @Description Enroll the authenticated member in an active club
// @Tags Clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=dto.JoinClubResponse} "Joined club"
// @Failure 400 {object} dto.APIResponse "Club inactive"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Failure 409 {object} dto.APIResponse "Already a member"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs/{id}/join [post]
func (h *ClubHandler) JoinClub(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	clubID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid club ID", "INVALID_CLUB_ID", nil)
	}

	res, err := h.flow.JoinClub(h.createRequestContext(c, "/api/v1/clubs/:id/join"), memberID, clubID)
	if err != nil {
		if businessflow.IsClubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Club not found", "CLUB_NOT_FOUND", nil)
		}
		if businessflow.IsClubInactive(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Club is inactive", "CLUB_INACTIVE", nil)
		}
		if businessflow.IsAlreadyMember(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "You are already a member of this club", "ALREADY_MEMBER", nil)
		}
		log.Println("Join club failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to join club", "JOIN_CLUB_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, nil)
}

// LeaveClub removes the member from a club
// @Summary Leave club
// @Description Remove the authenticated member from a club. Owners cannot leave their own club.
// @Tags Clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=dto.LeaveClubResponse} "Left club"
// @Failure 400 {object} dto.APIResponse "Owner cannot leave"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Club not found or not a member"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs/{id}/leave [post]
func (h *ClubHandler) LeaveClub(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	clubID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid club ID", "INVALID_CLUB_ID", nil)
	}

	res, err := h.flow.LeaveClub(h.createRequestContext(c, "/api/v1/clubs/:id/leave"), memberID, clubID)
	if err != nil {
		if businessflow.IsClubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Club not found", "CLUB_NOT_FOUND", nil)
		}
		if businessflow.IsNotClubMember(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "You are not a member of this club", "NOT_CLUB_MEMBER", nil)
		}
		if businessflow.IsOwnerCannotLeave(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "The owner cannot leave their own club", "OWNER_CANNOT_LEAVE", nil)
		}
		log.Println("Leave club failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to leave club", "LEAVE_CLUB_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, nil)
}

// ClubMembers returns a page of the club's roster
// @Summary Club members
// @Description List a club's members with their roles
// @Tags Clubs
// @Produce json
// @Param id path int true "Club ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ClubMembersResponse} "Members listed"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs/{id}/members [get]
func (h *ClubHandler) ClubMembers(c fiber.Ctx) error {
	clubID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid club ID", "INVALID_CLUB_ID", nil)
	}

	page := parsePagination(c)

	res, err := h.flow.ClubMembers(h.createRequestContext(c, "/api/v1/clubs/:id/members"), clubID, page)
	if err != nil {
		if businessflow.IsClubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Club not found", "CLUB_NOT_FOUND", nil)
		}
		log.Println("Club members failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list club members", "CLUB_MEMBERS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Club members retrieved successfully", fiber.Map{
		"members": res.Members,
		"total":   res.Total,
	})
}

// UploadLogo stores a logo image for the club
// @Summary Upload club logo
// @Description Upload a PNG or JPEG logo for a club. Club managers only.
// @Tags Clubs
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Club ID"
// @Param logo formData file true "Logo image"
// @Success 200 {object} dto.APIResponse{data=dto.ClubDTO} "Logo uploaded"
// @Failure 400 {object} dto.APIResponse "Invalid file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a club manager"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clubs/{id}/logo [post]
func (h *ClubHandler) UploadLogo(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	clubID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid club ID", "INVALID_CLUB_ID", nil)
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Logo file is required", "MISSING_LOGO_FILE", nil)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Logo must be a PNG or JPEG image", "INVALID_LOGO_FORMAT", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read logo file", "INVALID_LOGO_FILE", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read logo file", "INVALID_LOGO_FILE", nil)
	}

	res, err := h.flow.UploadLogo(h.createRequestContext(c, "/api/v1/clubs/:id/logo"), memberID, clubID, data, ext)
	if err != nil {
		if businessflow.IsClubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Club not found", "CLUB_NOT_FOUND", nil)
		}
		if businessflow.IsClubAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only club managers can upload a logo", "CLUB_ACCESS_DENIED", nil)
		}
		log.Println("Upload logo failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to upload logo", "UPLOAD_LOGO_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Logo uploaded successfully", fiber.Map{
		"club": res,
	})
}

func (h *ClubHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ClubHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
