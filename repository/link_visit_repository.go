package repository

import (
	"context"
	"fmt"

	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkVisitRepositoryImpl implements LinkVisitRepository interface
type LinkVisitRepositoryImpl struct {
	*BaseRepository[models.LinkVisit, models.LinkVisitFilter]
}

// NewLinkVisitRepository creates a new link visit repository
func NewLinkVisitRepository(db *gorm.DB) LinkVisitRepository {
	return &LinkVisitRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LinkVisit, models.LinkVisitFilter](db),
	}
}

func (r *LinkVisitRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkVisitFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.LinkID != nil {
		db = db.Where("link_id = ?", *f.LinkID)
	}
	if f.IP != nil {
		db = db.Where("ip = ?", *f.IP)
	}
	if f.VisitedAfter != nil {
		db = db.Where("last_visited_at >= ?", *f.VisitedAfter)
	}
	if f.VisitedBefore != nil {
		db = db.Where("last_visited_at < ?", *f.VisitedBefore)
	}
	return db
}

func (r *LinkVisitRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkVisitFilter, orderBy string, limit, offset int) ([]*models.LinkVisit, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkVisit{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.LinkVisit
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find link visits by filter: %w", err)
	}
	return rows, nil
}

func (r *LinkVisitRepositoryImpl) Count(ctx context.Context, filter models.LinkVisitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkVisit{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count link visits: %w", err)
	}
	return count, nil
}

func (r *LinkVisitRepositoryImpl) Exists(ctx context.Context, filter models.LinkVisitFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// RecordVisit inserts a visit row for (link, ip) or increments the existing
// counter in a single statement. The database resolves concurrent visits
// through the unique index, so no read-modify-write race exists.
func (r *LinkVisitRepositoryImpl) RecordVisit(ctx context.Context, linkID uint, ip string, userAgent *string) error {
	db := r.getDB(ctx)

	now := utils.UTCNow()
	visit := models.LinkVisit{
		LinkID:         linkID,
		IP:             ip,
		UserAgent:      userAgent,
		VisitCount:     1,
		FirstVisitedAt: now,
		LastVisitedAt:  now,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "link_id"}, {Name: "ip"}},
		DoUpdates: clause.Assignments(map[string]any{
			"visit_count":     gorm.Expr("link_visits.visit_count + 1"),
			"last_visited_at": now,
			"user_agent":      userAgent,
		}),
	}).Create(&visit).Error
	if err != nil {
		return fmt.Errorf("failed to record link visit: %w", err)
	}

	return nil
}

// StatsByLink aggregates total visits and unique visitors for one link
func (r *LinkVisitRepositoryImpl) StatsByLink(ctx context.Context, linkID uint) (*models.LinkStats, error) {
	db := r.getDB(ctx)

	var stats models.LinkStats
	err := db.Model(&models.LinkVisit{}).
		Select("links.id AS link_id, links.uid AS uid, links.target_url AS target_url, "+
			"COALESCE(SUM(link_visits.visit_count), 0) AS total_visits, COUNT(link_visits.id) AS unique_visitors").
		Joins("JOIN links ON links.id = link_visits.link_id").
		Where("link_visits.link_id = ?", linkID).
		Group("links.id, links.uid, links.target_url").
		Scan(&stats).Error

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate link stats: %w", err)
	}

	if stats.LinkID == 0 {
		// No visits yet; fall back to the bare link row
		var link models.Link
		if err := db.First(&link, linkID).Error; err != nil {
			return nil, fmt.Errorf("failed to load link for stats: %w", err)
		}
		stats = models.LinkStats{LinkID: link.ID, UID: link.UID, TargetURL: link.TargetURL}
	}

	return &stats, nil
}

// StatsByOwner aggregates visit stats across every link owned by a member
func (r *LinkVisitRepositoryImpl) StatsByOwner(ctx context.Context, ownerID uint) ([]*models.LinkStats, error) {
	db := r.getDB(ctx)

	var stats []*models.LinkStats
	err := db.Model(&models.Link{}).
		Select("links.id AS link_id, links.uid AS uid, links.target_url AS target_url, "+
			"COALESCE(SUM(link_visits.visit_count), 0) AS total_visits, COUNT(link_visits.id) AS unique_visitors").
		Joins("LEFT JOIN link_visits ON link_visits.link_id = links.id").
		Where("links.owner_id = ?", ownerID).
		Group("links.id, links.uid, links.target_url").
		Order("links.id ASC").
		Scan(&stats).Error

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate owner link stats: %w", err)
	}

	return stats, nil
}

// ListByLink retrieves visit rows for a link, most recent first
func (r *LinkVisitRepositoryImpl) ListByLink(ctx context.Context, linkID uint, limit, offset int) ([]*models.LinkVisit, error) {
	filter := models.LinkVisitFilter{LinkID: &linkID}
	return r.ByFilter(ctx, filter, "last_visited_at DESC", limit, offset)
}
