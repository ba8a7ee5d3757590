package models

import (
	"time"

	"github.com/campushq/campus-hub/utils"
)

// RSVP statuses
const (
	RSVPStatusGoing    = "going"
	RSVPStatusDeclined = "declined"
)

type Event struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ClubID          uint       `gorm:"not null;index:idx_events_club_id" json:"club_id"`
	Club            Club       `gorm:"foreignKey:ClubID;references:ID" json:"club,omitempty"`
	CreatorID       uint       `gorm:"not null" json:"creator_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     *string    `gorm:"type:text" json:"description,omitempty"`
	Location        *string    `gorm:"size:255" json:"location,omitempty"`
	StartsAt        time.Time  `gorm:"not null;index:idx_events_starts_at" json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	Capacity        *int       `json:"capacity,omitempty"`
	RemindersSentAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	RSVPs []EventRSVP `gorm:"foreignKey:EventID" json:"rsvps,omitempty"`
}

func (Event) TableName() string { return "events" }

func (e *Event) HasStarted() bool { return !utils.UTCNow().Before(e.StartsAt) }

// EventFilter provides filter fields for repository queries
type EventFilter struct {
	ID           *uint
	ClubID       *uint
	CreatorID    *uint
	StartsAfter  *time.Time
	StartsBefore *time.Time
}

// EventRSVP records a member's latest response for an event. Repeated
// responses update the existing row via the composite unique index.
type EventRSVP struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	EventID  uint   `gorm:"not null;uniqueIndex:uk_event_rsvps_event_member;index:idx_event_rsvps_event_id" json:"event_id"`
	MemberID uint   `gorm:"not null;uniqueIndex:uk_event_rsvps_event_member" json:"member_id"`
	Member   Member `gorm:"foreignKey:MemberID;references:ID" json:"member,omitempty"`
	Status   string `gorm:"size:16;not null" json:"status"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (EventRSVP) TableName() string { return "event_rsvps" }

// EventRSVPFilter provides filter fields for repository queries
type EventRSVPFilter struct {
	ID       *uint
	EventID  *uint
	MemberID *uint
	Status   *string
}
