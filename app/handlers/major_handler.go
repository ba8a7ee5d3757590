package handlers

import (
	"bytes"
	"context"
	"io"
	"log"
	"time"

	"github.com/campushq/campus-hub/app/dto"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/utils"
	"github.com/gofiber/fiber/v3"
)

// MajorHandlerInterface defines the contract for major catalog handlers
type MajorHandlerInterface interface {
	ListMajors(c fiber.Ctx) error
	ImportMajors(c fiber.Ctx) error
	ExportMajors(c fiber.Ctx) error
}

// MajorHandler handles major catalog HTTP requests
type MajorHandler struct {
	flow businessflow.MajorFlow
}

// NewMajorHandler creates a new major handler
func NewMajorHandler(flow businessflow.MajorFlow) *MajorHandler {
	return &MajorHandler{flow: flow}
}

func (h *MajorHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *MajorHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListMajors returns the full major catalog
// @Summary List majors
// @Description List every major ordered by name
// @Tags Majors
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListMajorsResponse} "Majors listed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/majors [get]
func (h *MajorHandler) ListMajors(c fiber.Ctx) error {
	res, err := h.flow.ListMajors(h.createRequestContext(c, "/api/v1/majors"))
	if err != nil {
		log.Println("List majors failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list majors", "LIST_MAJORS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Majors retrieved successfully", fiber.Map{
		"majors": res.Majors,
	})
}

// ImportMajors loads majors from an uploaded CSV file
// @Summary Import majors
// @Description Import the major catalog from a CSV file of "name,code" rows. Admin only.
// @Tags Majors
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} dto.APIResponse{data=dto.ImportMajorsResponse} "Import finished"
// @Failure 400 {object} dto.APIResponse "Invalid file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/majors/import [post]
func (h *MajorHandler) ImportMajors(c fiber.Ctx) error {
	memberID, ok := c.Locals("member_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Member ID not found in context", "MISSING_MEMBER_ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "CSV file is required", "MISSING_CSV_FILE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read CSV file", "INVALID_CSV_FILE", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read CSV file", "INVALID_CSV_FILE", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.ImportCSV(h.createRequestContext(c, "/api/v1/majors/import"), memberID, bytes.NewReader(data), metadata)
	if err != nil {
		if businessflow.IsAdminRequired(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Admin privileges required", "ADMIN_REQUIRED", nil)
		}
		if businessflow.IsMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Import majors failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to import majors", "IMPORT_MAJORS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"imported": res.Imported,
		"skipped":  res.Skipped,
	})
}

// ExportMajors downloads the major catalog as CSV
// @Summary Export majors
// @Description Download the major catalog as a CSV file
// @Tags Majors
// @Produce text/csv
// @Success 200 {file} binary "CSV file"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/majors/export [get]
func (h *MajorHandler) ExportMajors(c fiber.Ctx) error {
	data, filename, err := h.flow.ExportCSV(h.createRequestContext(c, "/api/v1/majors/export"))
	if err != nil {
		log.Println("Export majors failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export majors", "EXPORT_MAJORS_FAILED", nil)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

func (h *MajorHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *MajorHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
