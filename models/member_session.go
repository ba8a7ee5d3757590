// Package models contains domain entities and business models for the campus hub backend
package models

import (
	"time"

	"github.com/campushq/campus-hub/utils"
	"github.com/google/uuid"
)

type MemberSession struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CorrelationID  uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_correlation_id" json:"correlation_id"` // Groups related session records
	MemberID       uint      `gorm:"not null;index:idx_sessions_member_id" json:"member_id"`
	Member         Member    `gorm:"foreignKey:MemberID;references:ID" json:"member,omitempty"`
	SessionToken   string    `gorm:"size:512;not null;uniqueIndex:uk_sessions_session_token" json:"-"` // Never serialize token
	RefreshToken   *string   `gorm:"size:512;uniqueIndex:uk_sessions_refresh_token" json:"-"`          // Never serialize refresh token
	IPAddress      *string   `gorm:"type:inet;index:idx_sessions_ip_address" json:"ip_address,omitempty"`
	UserAgent      *string   `gorm:"type:text" json:"user_agent,omitempty"`
	IsActive       *bool     `gorm:"default:true;index:idx_sessions_is_active" json:"is_active"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	LastAccessedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_sessions_last_accessed" json:"last_accessed_at"`
	ExpiresAt      time.Time `gorm:"not null;index:idx_sessions_expires_at" json:"expires_at"`
}

func (MemberSession) TableName() string {
	return "member_sessions"
}

// MemberSessionFilter represents filter criteria for session queries
type MemberSessionFilter struct {
	ID            *uint
	CorrelationID *uuid.UUID
	MemberID      *uint
	IsActive      *bool
	IPAddress     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
	IsExpired     *bool // Helper to filter expired sessions
}

func (s *MemberSession) IsExpired() bool {
	return utils.UTCNow().After(s.ExpiresAt)
}

func (s *MemberSession) IsValid() bool {
	return utils.IsTrue(s.IsActive) && !s.IsExpired()
}
