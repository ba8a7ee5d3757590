package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campushq/campus-hub/models"
	"gorm.io/gorm"
)

// MajorRepositoryImpl implements MajorRepository interface
type MajorRepositoryImpl struct {
	*BaseRepository[models.Major, models.MajorFilter]
}

// NewMajorRepository creates a new major repository
func NewMajorRepository(db *gorm.DB) MajorRepository {
	return &MajorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Major, models.MajorFilter](db),
	}
}

func (r *MajorRepositoryImpl) applyFilter(db *gorm.DB, f models.MajorFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Name != nil {
		db = db.Where("name = ?", *f.Name)
	}
	if f.Code != nil {
		db = db.Where("code = ?", *f.Code)
	}
	return db
}

func (r *MajorRepositoryImpl) ByFilter(ctx context.Context, filter models.MajorFilter, orderBy string, limit, offset int) ([]*models.Major, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Major{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Major
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find majors by filter: %w", err)
	}
	return rows, nil
}

func (r *MajorRepositoryImpl) Count(ctx context.Context, filter models.MajorFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Major{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count majors: %w", err)
	}
	return count, nil
}

func (r *MajorRepositoryImpl) Exists(ctx context.Context, filter models.MajorFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByName retrieves a major by its unique name
func (r *MajorRepositoryImpl) ByName(ctx context.Context, name string) (*models.Major, error) {
	filter := models.MajorFilter{Name: &name}
	majors, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find major by name: %w", err)
	}

	if len(majors) == 0 {
		return nil, nil
	}

	return majors[0], nil
}

// ListAll retrieves every major ordered by name
func (r *MajorRepositoryImpl) ListAll(ctx context.Context) ([]*models.Major, error) {
	return r.ByFilter(ctx, models.MajorFilter{}, "name ASC", 0, 0)
}

// UpdateCode sets or clears the catalog code of a major
func (r *MajorRepositoryImpl) UpdateCode(ctx context.Context, majorID uint, code *string) error {
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

	err = db.Model(&models.Major{}).
		Where("id = ?", majorID).
		Updates(map[string]any{
			"code":       code,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update major code: %w", err)
	}

	return nil
}
