// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campushq/campus-hub/models"
	"gorm.io/gorm"
)

// MemberRepositoryImpl implements MemberRepository interface
type MemberRepositoryImpl struct {
	*BaseRepository[models.Member, models.MemberFilter]
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &MemberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Member, models.MemberFilter](db),
	}
}

func (r *MemberRepositoryImpl) applyFilter(db *gorm.DB, f models.MemberFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Email != nil {
		db = db.Where("email = ?", *f.Email)
	}
	if f.MajorID != nil {
		db = db.Where("major_id = ?", *f.MajorID)
	}
	if f.IsAdmin != nil {
		db = db.Where("is_admin = ?", *f.IsAdmin)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	if f.LastLoginAfter != nil {
		db = db.Where("last_login_at >= ?", *f.LastLoginAfter)
	}
	return db
}

func (r *MemberRepositoryImpl) ByFilter(ctx context.Context, filter models.MemberFilter, orderBy string, limit, offset int) ([]*models.Member, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Member{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Member
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find members by filter: %w", err)
	}
	return rows, nil
}

func (r *MemberRepositoryImpl) Count(ctx context.Context, filter models.MemberFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Member{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func (r *MemberRepositoryImpl) Exists(ctx context.Context, filter models.MemberFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByEmail retrieves a member by email address
func (r *MemberRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Member, error) {
	filter := models.MemberFilter{Email: &email}
	members, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find member by email: %w", err)
	}

	if len(members) == 0 {
		return nil, nil
	}

	return members[0], nil
}

// ByUUID retrieves a member by UUID
func (r *MemberRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Member, error) {
	db := r.getDB(ctx)

	var member models.Member
	err := db.Where("uuid = ?", uuidStr).Preload("Major").First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find member by UUID: %w", err)
	}

	return &member, nil
}

// ListActiveMembers retrieves active members with pagination
func (r *MemberRepositoryImpl) ListActiveMembers(ctx context.Context, limit, offset int) ([]*models.Member, error) {
	db := r.getDB(ctx)

	var members []*models.Member
	err := db.Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Major").
		Find(&members).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list active members: %w", err)
	}

	return members, nil
}

// UpdatePassword replaces a member's password hash
func (r *MemberRepositoryImpl) UpdatePassword(ctx context.Context, memberID uint, passwordHash string) error {
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

	err = db.Model(&models.Member{}).
		Where("id = ?", memberID).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update member password: %w", err)
	}

	return nil
}

// UpdateProfile applies a partial update to a member's profile fields
func (r *MemberRepositoryImpl) UpdateProfile(ctx context.Context, memberID uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

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

	updates["updated_at"] = time.Now().UTC()
	err = db.Model(&models.Member{}).Where("id = ?", memberID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update member profile: %w", err)
	}

	return nil
}

// UpdateLastLogin records the member's most recent successful login
func (r *MemberRepositoryImpl) UpdateLastLogin(ctx context.Context, memberID uint, at time.Time) error {
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

	err = db.Model(&models.Member{}).
		Where("id = ?", memberID).
		Update("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
