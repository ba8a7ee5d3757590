// Package models contains domain entities and business models for the campus hub backend
package models

import "time"

// Poll statuses
const (
	PollStatusOpen   = "open"
	PollStatusClosed = "closed"
)

type Poll struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Question  string     `gorm:"size:512;not null" json:"question"`
	CreatorID uint       `gorm:"not null;index:idx_polls_creator_id" json:"creator_id"`
	Creator   Member     `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
	Status    string     `gorm:"size:16;not null;default:open;index:idx_polls_status" json:"status"`
	ClubID    *uint      `gorm:"index:idx_polls_club_id" json:"club_id,omitempty"`
	Club      *Club      `gorm:"foreignKey:ClubID;references:ID" json:"club,omitempty"`
	ClosesAt  *time.Time `json:"closes_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_polls_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Options []PollOption `gorm:"foreignKey:PollID" json:"options,omitempty"`
	Votes   []PollVote   `gorm:"foreignKey:PollID" json:"-"`
}

func (Poll) TableName() string { return "polls" }

func (p *Poll) IsOpen() bool { return p.Status == PollStatusOpen }

// PollFilter provides filter fields for repository queries
type PollFilter struct {
	ID            *uint
	CreatorID     *uint
	ClubID        *uint
	Status        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

type PollOption struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PollID   uint   `gorm:"not null;index:idx_poll_options_poll_id" json:"poll_id"`
	Text     string `gorm:"size:255;not null" json:"text"`
	Position int    `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (PollOption) TableName() string { return "poll_options" }

// PollVote records one vote per member per poll, enforced by the composite
// unique index.
type PollVote struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PollID   uint `gorm:"not null;uniqueIndex:uk_poll_votes_poll_member;index:idx_poll_votes_poll_id" json:"poll_id"`
	OptionID uint `gorm:"not null;index:idx_poll_votes_option_id" json:"option_id"`
	MemberID uint `gorm:"not null;uniqueIndex:uk_poll_votes_poll_member" json:"member_id"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (PollVote) TableName() string { return "poll_votes" }

// PollVoteFilter provides filter fields for repository queries
type PollVoteFilter struct {
	ID       *uint
	PollID   *uint
	OptionID *uint
	MemberID *uint
}

// PollOptionResult is one row of tallied poll results
type PollOptionResult struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
	Votes    int64  `json:"votes"`
}
