package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/campushq/campus-hub/app/dto"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// LinkHandlerInterface defines the contract for link management handlers
type LinkHandlerInterface interface {
	CreateLink(c fiber.Ctx) error
	ListLinks(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
	OwnerStats(c fiber.Ctx) error
	GenerateQRCode(c fiber.Ctx) error
	ExportStats(c fiber.Ctx) error
	DeactivateLink(c fiber.Ctx) error
}

// LinkHandler handles link management HTTP requests
type LinkHandler struct {
	flow      businessflow.LinkFlow
	validator *validator.Validate
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(flow businessflow.LinkFlow) *LinkHandler {
	return &LinkHandler{flow: flow, validator: newValidator()}
}

func (h *LinkHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LinkHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateLink shortens a URL for the authenticated member
// @Summary Create short link
// @Description Shorten a URL under a fresh campus short link
// @Tags Links
// @Accept json
// @Produce json
// @Param request body dto.CreateLinkRequest true "Target URL"
// @Success 200 {object} dto.APIResponse{data=dto.CreateLinkResponse} "Link created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	var req dto.CreateLinkRequest
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

	res, err := h.flow.CreateLink(h.createRequestContext(c, "/api/v1/links"), memberID, &req, metadata)
	if err != nil {
		log.Println("Create link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create link", "CREATE_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"link": res.Link,
	})
}

// ListLinks returns a page of the member's links
// @Summary List links
// @Description List the authenticated member's links, newest first
// @Tags Links
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListLinksResponse} "Links listed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	page := parsePagination(c)

	res, err := h.flow.ListLinks(h.createRequestContext(c, "/api/v1/links"), memberID, page)
	if err != nil {
		log.Println("List links failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list links", "LIST_LINKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Links retrieved successfully", fiber.Map{
		"links": res.Links,
		"total": res.Total,
	})
}

// Stats returns aggregated and per-visitor stats for one of the member's links
// @Summary Link stats
// @Description Aggregated visit stats and per-visitor rows for one link
// @Tags Links
// @Produce json
// @Param id path int true "Link ID"
// @Success 200 {object} dto.APIResponse{data=dto.LinkStatsResponse} "Stats retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not the link owner"
// @Failure 404 {object} dto.APIResponse "Link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{id}/stats [get]
func (h *LinkHandler) Stats(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	linkID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link ID", "INVALID_LINK_ID", nil)
	}

	res, err := h.flow.Stats(h.createRequestContext(c, "/api/v1/links/:id/stats"), memberID, linkID)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsLinkAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "You do not own this link", "LINK_ACCESS_DENIED", nil)
		}
		log.Println("Link stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get link stats", "LINK_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link stats retrieved successfully", fiber.Map{
		"stats":  res.Stats,
		"visits": res.Visits,
	})
}

// OwnerStats returns visit stats across all of the member's links
// @Summary Owner stats
// @Description Aggregated visit stats for every link of the member
// @Tags Links
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.OwnerStatsResponse} "Stats retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/stats [get]
func (h *LinkHandler) OwnerStats(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	res, err := h.flow.OwnerStats(h.createRequestContext(c, "/api/v1/links/stats"), memberID)
	if err != nil {
		log.Println("Owner stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get link stats", "LINK_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link stats retrieved successfully", fiber.Map{
		"stats": res.Stats,
	})
}

// GenerateQRCode renders and stores a QR code for one of the member's links
// @Summary Generate QR code
// @Description Render the short URL as a PNG QR code and store it
// @Tags Links
// @Produce json
// @Param id path int true "Link ID"
// @Success 200 {object} dto.APIResponse{data=dto.GenerateQRCodeResponse} "QR code generated"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not the link owner"
// @Failure 404 {object} dto.APIResponse "Link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{id}/qrcode [post]
func (h *LinkHandler) GenerateQRCode(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	linkID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link ID", "INVALID_LINK_ID", nil)
	}

	res, err := h.flow.GenerateQRCode(h.createRequestContext(c, "/api/v1/links/:id/qrcode"), memberID, linkID)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsLinkAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "You do not own this link", "LINK_ACCESS_DENIED", nil)
		}
		log.Println("Generate QR code failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate QR code", "QR_GENERATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"qr_code_url": res.QRCodeURL,
	})
}

// ExportStats downloads the member's link stats as a spreadsheet
// @Summary Export link stats
// @Description Download visit stats for every link of the member as an XLSX file
// @Tags Links
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Spreadsheet"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/stats/export [get]
func (h *LinkHandler) ExportStats(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	data, filename, err := h.flow.ExportStatsXLSX(h.createRequestContext(c, "/api/v1/links/stats/export"), memberID)
	if err != nil {
		log.Println("Export link stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export link stats", "LINK_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// DeactivateLink disables one of the member's links
// @Summary Deactivate link
// @Description Disable a link so its short URL stops resolving
// @Tags Links
// @Produce json
// @Param id path int true "Link ID"
// @Success 200 {object} dto.APIResponse "Link deactivated"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not the link owner"
// @Failure 404 {object} dto.APIResponse "Link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{id} [delete]
func (h *LinkHandler) DeactivateLink(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	linkID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid link ID", "INVALID_LINK_ID", nil)
	}

	if err := h.flow.DeactivateLink(h.createRequestContext(c, "/api/v1/links/:id"), memberID, linkID); err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsLinkAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "You do not own this link", "LINK_ACCESS_DENIED", nil)
		}
		log.Println("Deactivate link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate link", "DEACTIVATE_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link deactivated successfully", nil)
}

func (h *LinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LinkHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

// parsePagination reads page and page_size query params with defaults
func parsePagination(c fiber.Ctx) *dto.PaginationRequest {
	page := &dto.PaginationRequest{}
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page.Page = parsed
		}
	}
	if v := c.Query("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page.PageSize = parsed
		}
	}
	page.Normalize()
	return page
}

// parseIDParam reads a positive integer path parameter
func parseIDParam(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(parsed), nil
}
