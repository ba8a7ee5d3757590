package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq/campus-hub/models"
	"gorm.io/gorm"
)

// ClubRepositoryImpl implements ClubRepository interface
type ClubRepositoryImpl struct {
	*BaseRepository[models.Club, models.ClubFilter]
}

// NewClubRepository creates a new club repository
func NewClubRepository(db *gorm.DB) ClubRepository {
	return &ClubRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Club, models.ClubFilter](db),
	}
}

func (r *ClubRepositoryImpl) applyFilter(db *gorm.DB, f models.ClubFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Name != nil {
		db = db.Where("name = ?", *f.Name)
	}
	if f.OwnerID != nil {
		db = db.Where("owner_id = ?", *f.OwnerID)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	return db
}

func (r *ClubRepositoryImpl) ByFilter(ctx context.Context, filter models.ClubFilter, orderBy string, limit, offset int) ([]*models.Club, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Club{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Club
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find clubs by filter: %w", err)
	}
	return rows, nil
}

func (r *ClubRepositoryImpl) Count(ctx context.Context, filter models.ClubFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Club{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clubs: %w", err)
	}
	return count, nil
}

func (r *ClubRepositoryImpl) Exists(ctx context.Context, filter models.ClubFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByName retrieves a club by its unique name
func (r *ClubRepositoryImpl) ByName(ctx context.Context, name string) (*models.Club, error) {
	filter := models.ClubFilter{Name: &name}
	clubs, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find club by name: %w", err)
	}

	if len(clubs) == 0 {
		return nil, nil
	}

	return clubs[0], nil
}

// ListActiveClubs retrieves active clubs with pagination
func (r *ClubRepositoryImpl) ListActiveClubs(ctx context.Context, limit, offset int) ([]*models.Club, error) {
	db := r.getDB(ctx)

	var clubs []*models.Club
	err := db.Where("is_active = ?", true).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&clubs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list active clubs: %w", err)
	}

	return clubs, nil
}

// SaveMembership inserts a club membership. The composite unique index
// rejects joining the same club twice.
func (r *ClubRepositoryImpl) SaveMembership(ctx context.Context, membership *models.ClubMembership) error {
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

	err = db.Create(membership).Error
	if err != nil {
		return fmt.Errorf("failed to save club membership: %w", err)
	}

	return nil
}

// MembershipByClubAndMember retrieves a member's membership in a club, if any
func (r *ClubRepositoryImpl) MembershipByClubAndMember(ctx context.Context, clubID, memberID uint) (*models.ClubMembership, error) {
	db := r.getDB(ctx)

	var membership models.ClubMembership
	err := db.Where("club_id = ? AND member_id = ?", clubID, memberID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find club membership: %w", err)
	}

	return &membership, nil
}

// ListMemberships retrieves a club's memberships with member rows preloaded
func (r *ClubRepositoryImpl) ListMemberships(ctx context.Context, clubID uint, limit, offset int) ([]*models.ClubMembership, error) {
	db := r.getDB(ctx)

	query := db.Where("club_id = ?", clubID).
		Order("joined_at ASC").
		Preload("Member")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var memberships []*models.ClubMembership
	if err := query.Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("failed to list club memberships: %w", err)
	}

	return memberships, nil
}

// ListClubsByMember retrieves every active club a member belongs to
func (r *ClubRepositoryImpl) ListClubsByMember(ctx context.Context, memberID uint) ([]*models.Club, error) {
	db := r.getDB(ctx)

	var clubs []*models.Club
	err := db.Model(&models.Club{}).
		Joins("JOIN club_memberships ON club_memberships.club_id = clubs.id").
		Where("club_memberships.member_id = ? AND clubs.is_active = ?", memberID, true).
		Order("clubs.name ASC").
		Find(&clubs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list clubs by member: %w", err)
	}

	return clubs, nil
}

// RemoveMembership deletes a member's membership row for a club
func (r *ClubRepositoryImpl) RemoveMembership(ctx context.Context, clubID, memberID uint) error {
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

	err = db.Where("club_id = ? AND member_id = ?", clubID, memberID).
		Delete(&models.ClubMembership{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove club membership: %w", err)
	}

	return nil
}

// CountMembers returns the number of members in a club
func (r *ClubRepositoryImpl) CountMembers(ctx context.Context, clubID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.ClubMembership{}).
		Where("club_id = ?", clubID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count club members: %w", err)
	}

	return count, nil
}
