package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushq/campus-hub/models"
	"gorm.io/gorm"
)

// PollRepositoryImpl implements PollRepository interface
type PollRepositoryImpl struct {
	*BaseRepository[models.Poll, models.PollFilter]
}

// NewPollRepository creates a new poll repository
func NewPollRepository(db *gorm.DB) PollRepository {
	return &PollRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Poll, models.PollFilter](db),
	}
}

func (r *PollRepositoryImpl) applyFilter(db *gorm.DB, f models.PollFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.CreatorID != nil {
		db = db.Where("creator_id = ?", *f.CreatorID)
	}
	if f.ClubID != nil {
		db = db.Where("club_id = ?", *f.ClubID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *PollRepositoryImpl) ByFilter(ctx context.Context, filter models.PollFilter, orderBy string, limit, offset int) ([]*models.Poll, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Poll{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Poll
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find polls by filter: %w", err)
	}
	return rows, nil
}

func (r *PollRepositoryImpl) Count(ctx context.Context, filter models.PollFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Poll{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count polls: %w", err)
	}
	return count, nil
}

func (r *PollRepositoryImpl) Exists(ctx context.Context, filter models.PollFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByIDWithOptions retrieves a poll with its options preloaded in position order
func (r *PollRepositoryImpl) ByIDWithOptions(ctx context.Context, id uint) (*models.Poll, error) {
	db := r.getDB(ctx)

	var poll models.Poll
	err := db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("poll_options.position ASC, poll_options.id ASC")
	}).First(&poll, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find poll with options: %w", err)
	}

	return &poll, nil
}

// ListOpenPolls retrieves open polls with pagination, newest first
func (r *PollRepositoryImpl) ListOpenPolls(ctx context.Context, limit, offset int) ([]*models.Poll, error) {
	db := r.getDB(ctx)

	var polls []*models.Poll
	err := db.Where("status = ?", models.PollStatusOpen).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("poll_options.position ASC, poll_options.id ASC")
		}).
		Find(&polls).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list open polls: %w", err)
	}

	return polls, nil
}

// Close marks a poll as closed so it stops accepting votes
func (r *PollRepositoryImpl) Close(ctx context.Context, pollID uint) error {
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

	err = db.Model(&models.Poll{}).
		Where("id = ?", pollID).
		Updates(map[string]any{
			"status":     models.PollStatusClosed,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}

	return nil
}

// SaveOption inserts one poll option
func (r *PollRepositoryImpl) SaveOption(ctx context.Context, option *models.PollOption) error {
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

	err = db.Create(option).Error
	if err != nil {
		return fmt.Errorf("failed to save poll option: %w", err)
	}

	return nil
}

// SaveVote inserts a vote. The composite unique index rejects a second
// vote by the same member on the same poll.
func (r *PollRepositoryImpl) SaveVote(ctx context.Context, vote *models.PollVote) error {
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

	err = db.Create(vote).Error
	if err != nil {
		return fmt.Errorf("failed to save poll vote: %w", err)
	}

	return nil
}

// VoteByPollAndMember retrieves a member's vote on a poll, if any
func (r *PollRepositoryImpl) VoteByPollAndMember(ctx context.Context, pollID, memberID uint) (*models.PollVote, error) {
	db := r.getDB(ctx)

	var vote models.PollVote
	err := db.Where("poll_id = ? AND member_id = ?", pollID, memberID).First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find poll vote: %w", err)
	}

	return &vote, nil
}

// Results tallies votes per option, including options with zero votes
func (r *PollRepositoryImpl) Results(ctx context.Context, pollID uint) ([]*models.PollOptionResult, error) {
	db := r.getDB(ctx)

	var results []*models.PollOptionResult
	err := db.Model(&models.PollOption{}).
		Select("poll_options.id AS option_id, poll_options.text AS text, COUNT(poll_votes.id) AS votes").
		Joins("LEFT JOIN poll_votes ON poll_votes.option_id = poll_options.id").
		Where("poll_options.poll_id = ?", pollID).
		Group("poll_options.id, poll_options.text, poll_options.position").
		Order("poll_options.position ASC, poll_options.id ASC").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to tally poll results: %w", err)
	}

	return results, nil
}
