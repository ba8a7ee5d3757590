// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/app/services"
	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignupFlow handles the complete signup business logic
type SignupFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	memberRepo      repository.MemberRepository
	majorRepo       repository.MajorRepository
	sessionRepo     repository.MemberSessionRepository
	auditRepo       repository.AuditLogRepository
	tokenService    services.TokenService
	notificationSvc services.NotificationService
	schoolCfg       config.SchoolConfig
	db              *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	memberRepo repository.MemberRepository,
	majorRepo repository.MajorRepository,
	sessionRepo repository.MemberSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	notificationSvc services.NotificationService,
	schoolCfg config.SchoolConfig,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		memberRepo:      memberRepo,
		majorRepo:       majorRepo,
		sessionRepo:     sessionRepo,
		auditRepo:       auditRepo,
		tokenService:    tokenService,
		notificationSvc: notificationSvc,
		schoolCfg:       schoolCfg,
		db:              db,
	}
}

// Signup handles the complete signup process
func (s *SignupFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	// Validate business rules
	if err := s.validateSignupRequest(ctx, req); err != nil {
		return nil, NewBusinessError("SIGNUP_VALIDATION_FAILED", "Signup validation failed", err)
	}

	// Use transaction for atomicity
	var member *models.Member
	var tokens struct {
		access  string
		refresh string
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Create member
		var err error
		member, err = s.createMember(txCtx, req)
		if err != nil {
			return err
		}

		// Generate tokens
		tokens.access, tokens.refresh, err = s.tokenService.GenerateTokens(member.ID)
		if err != nil {
			return err
		}

		// Create session
		if err := s.createSession(txCtx, member.ID, tokens.access, tokens.refresh, metadata); err != nil {
			return err
		}

		// Reload to pick up the major association
		member, err = s.memberRepo.ByUUID(txCtx, member.UUID.String())
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signup failed: %s", err.Error())
		_ = s.createAuditLog(ctx, member, models.AuditActionSignupFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	} else {
		msg := fmt.Sprintf("Signup completed successfully: %d", member.ID)
		_ = s.createAuditLog(ctx, member, models.AuditActionSignupCompleted, msg, true, nil, metadata)
	}

	// Send welcome email outside the transaction so delivery failures never
	// roll back the signup
	go func() {
		subject := "Welcome to Campus Hub"
		body := fmt.Sprintf("Hi %s, your account is ready. Sign in with %s.", member.FirstName, member.Email)
		if err := s.notificationSvc.SendEmail(member.Email, subject, body); err != nil {
			errMsg := fmt.Sprintf("Failed to send welcome email: %v", err)
			_ = s.createAuditLog(context.Background(), member, models.AuditActionSignupCompleted, errMsg, false, &errMsg, metadata)
		}
	}()

	return &dto.SignupResponse{
		Message:      "Signup completed successfully!",
		Token:        tokens.access,
		RefreshToken: tokens.refresh,
		Member:       ToAuthMemberDTO(*member),
	}, nil
}

// Private helper methods

func (s *SignupFlowImpl) validateSignupRequest(ctx context.Context, req *dto.SignupRequest) error {
	// Only school addresses may register
	if !utils.IsSchoolEmail(req.Email, s.schoolCfg.EmailDomain) {
		return ErrEmailNotSchoolDomain
	}

	// Check if email already exists
	existingMember, err := s.memberRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existingMember != nil {
		return ErrEmailAlreadyExists
	}

	// Validate major if provided
	if req.MajorID != nil {
		major, err := s.majorRepo.ByID(ctx, *req.MajorID)
		if err != nil {
			return err
		}
		if major == nil {
			return ErrMajorNotFound
		}
	}

	return nil
}

func (s *SignupFlowImpl) createMember(ctx context.Context, req *dto.SignupRequest) (*models.Member, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		UUID:           uuid.New(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PasswordHash:   string(hashedPassword),
		MajorID:        req.MajorID,
		GraduationYear: req.GraduationYear,
		IsAdmin:        utils.ToPtr(false),
		IsActive:       utils.ToPtr(true),
	}

	err = s.memberRepo.Save(ctx, member)
	if err != nil {
		return nil, err
	}

	return member, nil
}

func (s *SignupFlowImpl) createSession(ctx context.Context, memberID uint, accessToken, refreshToken string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.MemberSession{
		CorrelationID: uuid.New(),
		MemberID:      memberID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
	}

	return s.sessionRepo.Save(ctx, session)
}

func (s *SignupFlowImpl) createAuditLog(ctx context.Context, member *models.Member, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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

	// Extract request ID from context if available
	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}
