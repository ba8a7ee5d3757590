// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/app/services"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginFlow handles authentication of existing members
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	memberRepo   repository.MemberRepository
	sessionRepo  repository.MemberSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	memberRepo repository.MemberRepository,
	sessionRepo repository.MemberSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		memberRepo:   memberRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a member and issues a fresh session
func (l *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var member *models.Member
	var tokens struct {
		access  string
		refresh string
	}

	err := repository.WithTransaction(ctx, l.db, func(txCtx context.Context) error {
		var err error
		member, err = l.memberRepo.ByEmail(txCtx, req.Email)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrMemberNotFound
		}
		if !utils.IsTrue(member.IsActive) {
			return ErrAccountInactive
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
			return ErrIncorrectPassword
		}

		// Generate tokens
		tokens.access, tokens.refresh, err = l.tokenService.GenerateTokens(member.ID)
		if err != nil {
			return err
		}

		// Create session
		if err := l.createSession(txCtx, member.ID, tokens.access, tokens.refresh, metadata); err != nil {
			return err
		}

		// Record login time
		return l.memberRepo.UpdateLastLogin(txCtx, member.ID, utils.UTCNow())
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = l.createAuditLog(ctx, member, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	} else {
		msg := fmt.Sprintf("Login successful: %d", member.ID)
		_ = l.createAuditLog(ctx, member, models.AuditActionLoginSuccessful, msg, true, nil, metadata)
	}

	return &dto.LoginResponse{
		Message:      "Login successful",
		Token:        tokens.access,
		RefreshToken: tokens.refresh,
		Member:       ToAuthMemberDTO(*member),
	}, nil
}

// RefreshToken rotates a session using a valid refresh token
func (l *LoginFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	var tokens struct {
		access  string
		refresh string
	}

	err := repository.WithTransaction(ctx, l.db, func(txCtx context.Context) error {
		session, err := l.sessionRepo.ByRefreshToken(txCtx, req.RefreshToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}

		member, err := l.memberRepo.ByID(txCtx, session.MemberID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrMemberNotFound
		}
		if !utils.IsTrue(member.IsActive) {
			return ErrAccountInactive
		}

		tokens.access, tokens.refresh, err = l.tokenService.RefreshToken(req.RefreshToken)
		if err != nil {
			return err
		}

		// Retire the old session and open a new one under the same correlation ID
		if err := l.sessionRepo.ExpireSession(txCtx, session.ID); err != nil {
			return err
		}

		newSession := &models.MemberSession{
			CorrelationID: session.CorrelationID,
			MemberID:      session.MemberID,
			SessionToken:  tokens.access,
			RefreshToken:  &tokens.refresh,
			IPAddress:     session.IPAddress,
			UserAgent:     session.UserAgent,
			IsActive:      utils.ToPtr(true),
			ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
		}

		return l.sessionRepo.Save(txCtx, newSession)
	})

	if err != nil {
		return nil, NewBusinessError("REFRESH_TOKEN_FAILED", "Token refresh failed", err)
	}

	return &dto.RefreshTokenResponse{
		Message:      "Token refreshed successfully",
		Token:        tokens.access,
		RefreshToken: tokens.refresh,
	}, nil
}

// Logout expires the member's current session and revokes its token
func (l *LoginFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	var member *models.Member

	err := repository.WithTransaction(ctx, l.db, func(txCtx context.Context) error {
		session, err := l.sessionRepo.BySessionToken(txCtx, sessionToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}

		member = &session.Member

		if err := l.sessionRepo.ExpireSession(txCtx, session.ID); err != nil {
			return err
		}

		return l.tokenService.RevokeToken(sessionToken)
	})

	if err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	msg := "Member logged out"
	_ = l.createAuditLog(ctx, member, models.AuditActionLogout, msg, true, nil, metadata)

	return &dto.LogoutResponse{Message: "Logged out successfully"}, nil
}

func (l *LoginFlowImpl) createSession(ctx context.Context, memberID uint, accessToken, refreshToken string, metadata *ClientMetadata) error {
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

	return l.sessionRepo.Save(ctx, session)
}

func (l *LoginFlowImpl) createAuditLog(ctx context.Context, member *models.Member, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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

	return l.auditRepo.Save(ctx, audit)
}
