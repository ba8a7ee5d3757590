// Package models contains domain entities and business models for the campus hub backend
package models

import "time"

// Link represents a shortened link owned by a member.
// UID is the short unique token that maps to the target URL.
type Link struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UID       string  `gorm:"size:64;not null;uniqueIndex:uk_links_uid" json:"uid"`
	OwnerID   uint    `gorm:"not null;index:idx_links_owner_id" json:"owner_id"`
	Owner     Member  `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	TargetURL string  `gorm:"type:text;not null" json:"target_url"`
	ShortURL  string  `gorm:"type:text;not null" json:"short_url"`
	Title     *string `gorm:"size:255" json:"title,omitempty"`

	// QRCodeFile is the stored filename of the generated QR image, if any
	QRCodeFile *string `gorm:"size:255" json:"qr_code_file,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_links_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Visits []LinkVisit `gorm:"foreignKey:LinkID" json:"-"`
}

// TableName returns the table name for Link
func (Link) TableName() string { return "links" }

// LinkFilter provides filter fields for repository queries
type LinkFilter struct {
	ID            *uint
	UID           *string
	OwnerID       *uint
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// LinkVisit is a per-(link, client address) visit counter. The composite
// unique index makes the record-or-increment upsert race free: two
// concurrent first visits from the same address resolve to one row.
type LinkVisit struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LinkID         uint      `gorm:"not null;uniqueIndex:uk_link_visits_link_ip;index:idx_link_visits_link_id" json:"link_id"`
	IP             string    `gorm:"size:64;not null;uniqueIndex:uk_link_visits_link_ip" json:"ip"`
	UserAgent      *string   `gorm:"type:text" json:"user_agent,omitempty"`
	VisitCount     uint      `gorm:"not null;default:1" json:"visit_count"`
	FirstVisitedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"first_visited_at"`
	LastVisitedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_link_visits_last_visited" json:"last_visited_at"`
}

// TableName returns the table name for LinkVisit
func (LinkVisit) TableName() string { return "link_visits" }

// LinkVisitFilter provides filter fields for repository queries
type LinkVisitFilter struct {
	ID            *uint
	LinkID        *uint
	IP            *string
	VisitedAfter  *time.Time
	VisitedBefore *time.Time
}

// LinkStats aggregates visit counters for a link
type LinkStats struct {
	LinkID         uint   `json:"link_id"`
	UID            string `json:"uid"`
	TargetURL      string `json:"target_url"`
	TotalVisits    int64  `json:"total_visits"`
	UniqueVisitors int64  `json:"unique_visitors"`
}
