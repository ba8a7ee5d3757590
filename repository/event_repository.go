package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushq/campus-hub/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepositoryImpl implements EventRepository interface
type EventRepositoryImpl struct {
	*BaseRepository[models.Event, models.EventFilter]
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &EventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Event, models.EventFilter](db),
	}
}

func (r *EventRepositoryImpl) applyFilter(db *gorm.DB, f models.EventFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ClubID != nil {
		db = db.Where("club_id = ?", *f.ClubID)
	}
	if f.CreatorID != nil {
		db = db.Where("creator_id = ?", *f.CreatorID)
	}
	if f.StartsAfter != nil {
		db = db.Where("starts_at >= ?", *f.StartsAfter)
	}
	if f.StartsBefore != nil {
		db = db.Where("starts_at < ?", *f.StartsBefore)
	}
	return db
}

func (r *EventRepositoryImpl) ByFilter(ctx context.Context, filter models.EventFilter, orderBy string, limit, offset int) ([]*models.Event, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Event{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Event
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find events by filter: %w", err)
	}
	return rows, nil
}

func (r *EventRepositoryImpl) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Event{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *EventRepositoryImpl) Exists(ctx context.Context, filter models.EventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ListUpcoming retrieves events starting after the given time, soonest first
func (r *EventRepositoryImpl) ListUpcoming(ctx context.Context, after time.Time, limit, offset int) ([]*models.Event, error) {
	db := r.getDB(ctx)

	query := db.Where("starts_at >= ?", after).
		Order("starts_at ASC").
		Preload("Club")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var events []*models.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	return events, nil
}

// ListByClub retrieves a club's events, soonest first
func (r *EventRepositoryImpl) ListByClub(ctx context.Context, clubID uint, limit, offset int) ([]*models.Event, error) {
	filter := models.EventFilter{ClubID: &clubID}
	return r.ByFilter(ctx, filter, "starts_at ASC", limit, offset)
}

// ListDueForReminder retrieves events starting inside the window whose
// reminders have not been sent yet
func (r *EventRepositoryImpl) ListDueForReminder(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	db := r.getDB(ctx)

	var events []*models.Event
	err := db.Where("starts_at >= ? AND starts_at < ? AND reminders_sent_at IS NULL", from, to).
		Order("starts_at ASC").
		Preload("Club").
		Find(&events).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list events due for reminder: %w", err)
	}

	return events, nil
}

// MarkRemindersSent stamps an event so the scheduler does not remind twice
func (r *EventRepositoryImpl) MarkRemindersSent(ctx context.Context, eventID uint, at time.Time) error {
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

	err = db.Model(&models.Event{}).
		Where("id = ? AND reminders_sent_at IS NULL", eventID).
		Update("reminders_sent_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark reminders sent: %w", err)
	}

	return nil
}

// UpsertRSVP inserts a member's response or replaces the previous one in a
// single statement keyed on the (event, member) unique index
func (r *EventRepositoryImpl) UpsertRSVP(ctx context.Context, rsvp *models.EventRSVP) error {
	db := r.getDB(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}, {Name: "member_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":     rsvp.Status,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(rsvp).Error
	if err != nil {
		return fmt.Errorf("failed to upsert event RSVP: %w", err)
	}

	return nil
}

// RSVPByEventAndMember retrieves a member's response for an event, if any
func (r *EventRepositoryImpl) RSVPByEventAndMember(ctx context.Context, eventID, memberID uint) (*models.EventRSVP, error) {
	db := r.getDB(ctx)

	var rsvp models.EventRSVP
	err := db.Where("event_id = ? AND member_id = ?", eventID, memberID).First(&rsvp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find event RSVP: %w", err)
	}

	return &rsvp, nil
}

// ListRSVPs retrieves an event's responses, optionally filtered by status
func (r *EventRepositoryImpl) ListRSVPs(ctx context.Context, eventID uint, status string) ([]*models.EventRSVP, error) {
	db := r.getDB(ctx)

	query := db.Where("event_id = ?", eventID).Preload("Member")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rsvps []*models.EventRSVP
	if err := query.Order("updated_at ASC").Find(&rsvps).Error; err != nil {
		return nil, fmt.Errorf("failed to list event RSVPs: %w", err)
	}

	return rsvps, nil
}

// CountGoing returns how many members responded "going" to an event
func (r *EventRepositoryImpl) CountGoing(ctx context.Context, eventID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.EventRSVP{}).
		Where("event_id = ? AND status = ?", eventID, models.RSVPStatusGoing).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count going RSVPs: %w", err)
	}

	return count, nil
}
