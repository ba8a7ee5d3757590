// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberSessionRepositoryImpl implements MemberSessionRepository interface
type MemberSessionRepositoryImpl struct {
	*BaseRepository[models.MemberSession, models.MemberSessionFilter]
}

// NewMemberSessionRepository creates a new member session repository
func NewMemberSessionRepository(db *gorm.DB) MemberSessionRepository {
	return &MemberSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MemberSession, models.MemberSessionFilter](db),
	}
}

func (r *MemberSessionRepositoryImpl) applyFilter(db *gorm.DB, f models.MemberSessionFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.CorrelationID != nil {
		db = db.Where("correlation_id = ?", *f.CorrelationID)
	}
	if f.MemberID != nil {
		db = db.Where("member_id = ?", *f.MemberID)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.IPAddress != nil {
		db = db.Where("ip_address = ?", *f.IPAddress)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	if f.ExpiresAfter != nil {
		db = db.Where("expires_at >= ?", *f.ExpiresAfter)
	}
	if f.ExpiresBefore != nil {
		db = db.Where("expires_at < ?", *f.ExpiresBefore)
	}
	if f.IsExpired != nil {
		if *f.IsExpired {
			db = db.Where("expires_at <= ?", utils.UTCNow())
		} else {
			db = db.Where("expires_at > ?", utils.UTCNow())
		}
	}
	return db
}

func (r *MemberSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.MemberSessionFilter, orderBy string, limit, offset int) ([]*models.MemberSession, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MemberSession{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.MemberSession
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find sessions by filter: %w", err)
	}
	return rows, nil
}

func (r *MemberSessionRepositoryImpl) Count(ctx context.Context, filter models.MemberSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MemberSession{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (r *MemberSessionRepositoryImpl) Exists(ctx context.Context, filter models.MemberSessionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// BySessionToken retrieves a live session by session token
func (r *MemberSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.MemberSession, error) {
	db := r.getDB(ctx)

	var session models.MemberSession
	err := db.Where("session_token = ? AND is_active = ? AND expires_at > ?",
		token, true, utils.UTCNow()).
		Preload("Member").
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}

	return &session, nil
}

// ByRefreshToken retrieves a live session by refresh token
func (r *MemberSessionRepositoryImpl) ByRefreshToken(ctx context.Context, token string) (*models.MemberSession, error) {
	db := r.getDB(ctx)

	var session models.MemberSession
	err := db.Where("refresh_token = ? AND is_active = ? AND expires_at > ?",
		token, true, utils.UTCNow()).
		Preload("Member").
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by refresh token: %w", err)
	}

	return &session, nil
}

// ListActiveSessionsByMember retrieves all active, unexpired sessions for a member
func (r *MemberSessionRepositoryImpl) ListActiveSessionsByMember(ctx context.Context, memberID uint) ([]*models.MemberSession, error) {
	filter := models.MemberSessionFilter{
		MemberID:  &memberID,
		IsActive:  utils.ToPtr(true),
		IsExpired: utils.ToPtr(false),
	}

	sessions, err := r.ByFilter(ctx, filter, "last_accessed_at DESC", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions by member: %w", err)
	}

	return sessions, nil
}

// ExpireSession deactivates a single session
func (r *MemberSessionRepositoryImpl) ExpireSession(ctx context.Context, sessionID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.MemberSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"is_active":  false,
			"expires_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}

	return nil
}

// ExpireAllMemberSessions deactivates every active session of a member
func (r *MemberSessionRepositoryImpl) ExpireAllMemberSessions(ctx context.Context, memberID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.MemberSession{}).
		Where("member_id = ? AND is_active = ?", memberID, true).
		Updates(map[string]any{
			"is_active":  false,
			"expires_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to expire member sessions: %w", err)
	}

	return nil
}

// CleanupExpiredSessions marks long-expired sessions as inactive
func (r *MemberSessionRepositoryImpl) CleanupExpiredSessions(ctx context.Context) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	cutoff := utils.UTCNow().Add(-24 * time.Hour)
	err = db.Model(&models.MemberSession{}).
		Where("is_active = ? AND expires_at < ?", true, cutoff).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}

	return nil
}

// GetLatestByCorrelationID retrieves the most recent session record for a correlation ID
func (r *MemberSessionRepositoryImpl) GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.MemberSession, error) {
	db := r.getDB(ctx)

	var session models.MemberSession
	err := db.Where("correlation_id = ?", correlationID).
		Order("id DESC").
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by correlation ID: %w", err)
	}

	return &session, nil
}
