// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"gorm.io/gorm"
)

// MajorFlow handles the catalog of fields of study
type MajorFlow interface {
	ListMajors(ctx context.Context) (*dto.ListMajorsResponse, error)
	// ImportCSV loads majors from CSV rows of "name[,code]". Existing names
	// get their code updated; unchanged rows are skipped. Admin only.
	ImportCSV(ctx context.Context, memberID uint, data io.Reader, metadata *ClientMetadata) (*dto.ImportMajorsResponse, error)
	ExportCSV(ctx context.Context) ([]byte, string, error)
}

// MajorFlowImpl implements the major business flow
type MajorFlowImpl struct {
	majorRepo  repository.MajorRepository
	memberRepo repository.MemberRepository
	auditRepo  repository.AuditLogRepository
	db         *gorm.DB
}

// NewMajorFlow creates a new major flow instance
func NewMajorFlow(
	majorRepo repository.MajorRepository,
	memberRepo repository.MemberRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) MajorFlow {
	return &MajorFlowImpl{
		majorRepo:  majorRepo,
		memberRepo: memberRepo,
		auditRepo:  auditRepo,
		db:         db,
	}
}

// ListMajors returns every major ordered by name
func (f *MajorFlowImpl) ListMajors(ctx context.Context) (*dto.ListMajorsResponse, error) {
	majors, err := f.majorRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("LIST_MAJORS_FAILED", "Failed to list majors", err)
	}

	out := make([]dto.MajorDTO, 0, len(majors))
	for _, m := range majors {
		out = append(out, dto.MajorDTO{ID: m.ID, Name: m.Name, Code: m.Code})
	}

	return &dto.ListMajorsResponse{Majors: out}, nil
}

// ImportCSV loads the major catalog from a CSV stream
func (f *MajorFlowImpl) ImportCSV(ctx context.Context, memberID uint, data io.Reader, metadata *ClientMetadata) (*dto.ImportMajorsResponse, error) {
	member, err := f.memberRepo.ByID(ctx, memberID)
	if err != nil {
		return nil, NewBusinessError("IMPORT_MAJORS_FAILED", "Failed to lookup member", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if !utils.IsTrue(member.IsAdmin) {
		return nil, ErrAdminRequired
	}

	reader := csv.NewReader(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	imported := 0
	updated := 0
	skipped := 0

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		seen := make(map[string]bool)

		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(record) == 0 {
				continue
			}

			name := strings.TrimSpace(record[0])
			if name == "" || strings.EqualFold(name, "name") {
				continue
			}
			if seen[strings.ToLower(name)] {
				skipped++
				continue
			}
			seen[strings.ToLower(name)] = true

			var code string
			if len(record) > 1 {
				code = strings.TrimSpace(record[1])
			}

			existing, err := f.majorRepo.ByName(txCtx, name)
			if err != nil {
				return err
			}
			if existing != nil {
				if code == "" || (existing.Code != nil && *existing.Code == code) {
					skipped++
					continue
				}
				if err := f.majorRepo.UpdateCode(txCtx, existing.ID, &code); err != nil {
					return err
				}
				updated++
				continue
			}

			major := &models.Major{Name: name}
			if code != "" {
				major.Code = &code
			}

			if err := f.majorRepo.Save(txCtx, major); err != nil {
				return err
			}
			imported++
		}

		return nil
	})

	if err != nil {
		return nil, NewBusinessError("IMPORT_MAJORS_FAILED", "Failed to import majors", err)
	}

	msg := fmt.Sprintf("Majors imported: %d imported, %d updated, %d skipped", imported, updated, skipped)
	_ = f.createAuditLog(ctx, memberID, models.AuditActionMajorsImported, msg, true, nil, metadata)

	return &dto.ImportMajorsResponse{
		Message:  "Majors imported successfully",
		Imported: imported,
		Updated:  updated,
		Skipped:  skipped,
	}, nil
}

// ExportCSV serializes the major catalog as CSV
func (f *MajorFlowImpl) ExportCSV(ctx context.Context) ([]byte, string, error) {
	majors, err := f.majorRepo.ListAll(ctx)
	if err != nil {
		return nil, "", NewBusinessError("EXPORT_MAJORS_FAILED", "Failed to list majors", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"name", "code"}); err != nil {
		return nil, "", NewBusinessError("EXPORT_MAJORS_FAILED", "Failed to serialize majors", err)
	}
	for _, m := range majors {
		code := ""
		if m.Code != nil {
			code = *m.Code
		}
		if err := writer.Write([]string{m.Name, code}); err != nil {
			return nil, "", NewBusinessError("EXPORT_MAJORS_FAILED", "Failed to serialize majors", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", NewBusinessError("EXPORT_MAJORS_FAILED", "Failed to serialize majors", err)
	}

	filename := utils.UniqueFilename("majors", ".csv")
	return buf.Bytes(), filename, nil
}

func (f *MajorFlowImpl) createAuditLog(ctx context.Context, memberID uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		MemberID:     &memberID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return f.auditRepo.Save(ctx, audit)
}
