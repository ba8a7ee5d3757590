package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campushq/campus-hub/models"
	"gorm.io/gorm"
)

// LinkRepositoryImpl implements LinkRepository interface
type LinkRepositoryImpl struct {
	*BaseRepository[models.Link, models.LinkFilter]
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Link, models.LinkFilter](db),
	}
}

func (r *LinkRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UID != nil {
		db = db.Where("uid = ?", *f.UID)
	}
	if f.OwnerID != nil {
		db = db.Where("owner_id = ?", *f.OwnerID)
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
	return db
}

func (r *LinkRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Link
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find links by filter: %w", err)
	}
	return rows, nil
}

func (r *LinkRepositoryImpl) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

func (r *LinkRepositoryImpl) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByUID retrieves a link by its short identifier
func (r *LinkRepositoryImpl) ByUID(ctx context.Context, uid string) (*models.Link, error) {
	filter := models.LinkFilter{UID: &uid}
	links, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find link by UID: %w", err)
	}

	if len(links) == 0 {
		return nil, nil
	}

	return links[0], nil
}

// ListByOwner retrieves a member's links, newest first
func (r *LinkRepositoryImpl) ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]*models.Link, error) {
	filter := models.LinkFilter{OwnerID: &ownerID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// UpdateQRCodeFile attaches a stored QR code file to a link
func (r *LinkRepositoryImpl) UpdateQRCodeFile(ctx context.Context, linkID uint, file string) error {
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

	err = db.Model(&models.Link{}).
		Where("id = ?", linkID).
		Updates(map[string]any{
			"qr_code_file": file,
			"updated_at":   time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update link QR code file: %w", err)
	}

	return nil
}

// Deactivate disables a link so its short URL stops resolving
func (r *LinkRepositoryImpl) Deactivate(ctx context.Context, linkID uint) error {
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

	err = db.Model(&models.Link{}).
		Where("id = ?", linkID).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}

	return nil
}
