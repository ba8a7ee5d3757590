// Package models contains domain entities and business models for the campus hub backend
package models

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_members_uuid" json:"uuid"`

	FirstName string `gorm:"size:255;not null" json:"first_name"`
	LastName  string `gorm:"size:255;not null" json:"last_name"`

	// Email must carry the configured school domain suffix
	Email        string `gorm:"size:255;not null;uniqueIndex:uk_members_email" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	MajorID *uint  `gorm:"index:idx_members_major_id" json:"major_id,omitempty"`
	Major   *Major `gorm:"foreignKey:MajorID;references:ID" json:"major,omitempty"`

	GraduationYear *int `json:"graduation_year,omitempty"`

	IsAdmin  *bool `gorm:"default:false" json:"is_admin"`
	IsActive *bool `gorm:"default:true;index:idx_members_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_members_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_members_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Sessions    []MemberSession  `gorm:"foreignKey:MemberID" json:"-"`
	AuditLogs   []AuditLog       `gorm:"foreignKey:MemberID" json:"-"`
	Links       []Link           `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships []ClubMembership `gorm:"foreignKey:MemberID" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// MemberFilter represents filter criteria for member queries
type MemberFilter struct {
	ID             *uint
	UUID           *uuid.UUID
	Email          *string
	MajorID        *uint
	IsAdmin        *bool
	IsActive       *bool
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	LastLoginAfter *time.Time
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
