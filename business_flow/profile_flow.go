// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"gorm.io/gorm"
)

// ProfileFlow handles member profile reads and updates
type ProfileFlow interface {
	GetProfile(ctx context.Context, memberID uint) (*dto.GetProfileResponse, error)
	UpdateProfile(ctx context.Context, memberID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error)
	ChangePassword(ctx context.Context, memberID uint, req *dto.ChangePasswordRequest, metadata *ClientMetadata) (*dto.ChangePasswordResponse, error)
}

// ProfileFlowImpl implements the profile business flow
type ProfileFlowImpl struct {
	memberRepo  repository.MemberRepository
	majorRepo   repository.MajorRepository
	sessionRepo repository.MemberSessionRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewProfileFlow creates a new profile flow instance
func NewProfileFlow(
	memberRepo repository.MemberRepository,
	majorRepo repository.MajorRepository,
	sessionRepo repository.MemberSessionRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ProfileFlow {
	return &ProfileFlowImpl{
		memberRepo:  memberRepo,
		majorRepo:   majorRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// GetProfile returns the member's profile
func (p *ProfileFlowImpl) GetProfile(ctx context.Context, memberID uint) (*dto.GetProfileResponse, error) {
	member, err := p.memberRepo.ByID(ctx, memberID)
	if err != nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", err)
	}
	if member == nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", ErrMemberNotFound)
	}

	if member.MajorID != nil {
		major, err := p.majorRepo.ByID(ctx, *member.MajorID)
		if err != nil {
			return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", err)
		}
		member.Major = major
	}

	return &dto.GetProfileResponse{Member: ToMemberDTO(*member)}, nil
}

// UpdateProfile applies a partial update to the member's profile
func (p *ProfileFlowImpl) UpdateProfile(ctx context.Context, memberID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error) {
	var member *models.Member

	err := repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		var err error
		member, err = p.memberRepo.ByID(txCtx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrMemberNotFound
		}

		updates := make(map[string]any)
		if req.FirstName != nil {
			updates["first_name"] = *req.FirstName
		}
		if req.LastName != nil {
			updates["last_name"] = *req.LastName
		}
		if req.MajorID != nil {
			major, err := p.majorRepo.ByID(txCtx, *req.MajorID)
			if err != nil {
				return err
			}
			if major == nil {
				return ErrMajorNotFound
			}
			updates["major_id"] = *req.MajorID
		}
		if req.GraduationYear != nil {
			updates["graduation_year"] = *req.GraduationYear
		}

		if err := p.memberRepo.UpdateProfile(txCtx, memberID, updates); err != nil {
			return err
		}

		member, err = p.memberRepo.ByID(txCtx, memberID)
		return err
	})

	if err != nil {
		errMsg := fmt.Sprintf("Profile update failed: %s", err.Error())
		_ = p.createAuditLog(ctx, member, models.AuditActionProfileUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("UPDATE_PROFILE_FAILED", "Profile update failed", err)
	} else {
		msg := fmt.Sprintf("Profile updated: %d", memberID)
		_ = p.createAuditLog(ctx, member, models.AuditActionProfileUpdated, msg, true, nil, metadata)
	}

	if member.MajorID != nil {
		major, err := p.majorRepo.ByID(ctx, *member.MajorID)
		if err == nil {
			member.Major = major
		}
	}

	return &dto.UpdateProfileResponse{
		Message: "Profile updated successfully",
		Member:  ToMemberDTO(*member),
	}, nil
}

// ChangePassword verifies the current password, stores a new hash, and
// expires every other session of the member
func (p *ProfileFlowImpl) ChangePassword(ctx context.Context, memberID uint, req *dto.ChangePasswordRequest, metadata *ClientMetadata) (*dto.ChangePasswordResponse, error) {
	err := repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		member, err := p.memberRepo.ByID(txCtx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrMemberNotFound
		}

		if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return ErrIncorrectPassword
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		if err := p.memberRepo.UpdatePassword(txCtx, memberID, string(hashed)); err != nil {
			return err
		}

		return p.sessionRepo.ExpireAllMemberSessions(txCtx, memberID)
	})

	if err != nil {
		return nil, NewBusinessError("CHANGE_PASSWORD_FAILED", "Password change failed", err)
	}

	return &dto.ChangePasswordResponse{Message: "Password changed successfully. Please sign in again."}, nil
}

func (p *ProfileFlowImpl) createAuditLog(ctx context.Context, member *models.Member, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var memberID *uint
	if member != nil {
		memberID = &member.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		MemberID:     memberID,
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

	return p.auditRepo.Save(ctx, audit)
}
