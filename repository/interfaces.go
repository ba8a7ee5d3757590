// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/campushq/campus-hub/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// MemberRepository defines operations for members
type MemberRepository interface {
	Repository[models.Member, models.MemberFilter]
	ByEmail(ctx context.Context, email string) (*models.Member, error)
	ByUUID(ctx context.Context, uuid string) (*models.Member, error)
	ListActiveMembers(ctx context.Context, limit, offset int) ([]*models.Member, error)
	UpdatePassword(ctx context.Context, memberID uint, passwordHash string) error
	UpdateProfile(ctx context.Context, memberID uint, updates map[string]any) error
	UpdateLastLogin(ctx context.Context, memberID uint, at time.Time) error
}

// MemberSessionRepository defines operations for member sessions
type MemberSessionRepository interface {
	Repository[models.MemberSession, models.MemberSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.MemberSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.MemberSession, error)
	ListActiveSessionsByMember(ctx context.Context, memberID uint) ([]*models.MemberSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllMemberSessions(ctx context.Context, memberID uint) error
	CleanupExpiredSessions(ctx context.Context) error
	GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.MemberSession, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByMember(ctx context.Context, memberID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

// MajorRepository defines operations for majors
type MajorRepository interface {
	Repository[models.Major, models.MajorFilter]
	ByName(ctx context.Context, name string) (*models.Major, error)
	ListAll(ctx context.Context) ([]*models.Major, error)
	UpdateCode(ctx context.Context, majorID uint, code *string) error
}

// LinkRepository defines operations for shortened links
type LinkRepository interface {
	Repository[models.Link, models.LinkFilter]
	ByUID(ctx context.Context, uid string) (*models.Link, error)
	ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]*models.Link, error)
	UpdateQRCodeFile(ctx context.Context, linkID uint, file string) error
	Deactivate(ctx context.Context, linkID uint) error
}

// LinkVisitRepository defines operations for link visit tracking
type LinkVisitRepository interface {
	Repository[models.LinkVisit, models.LinkVisitFilter]
	RecordVisit(ctx context.Context, linkID uint, ip string, userAgent *string) error
	StatsByLink(ctx context.Context, linkID uint) (*models.LinkStats, error)
	StatsByOwner(ctx context.Context, ownerID uint) ([]*models.LinkStats, error)
	ListByLink(ctx context.Context, linkID uint, limit, offset int) ([]*models.LinkVisit, error)
}

// PollRepository defines operations for polls, options, and votes
type PollRepository interface {
	Repository[models.Poll, models.PollFilter]
	ByIDWithOptions(ctx context.Context, id uint) (*models.Poll, error)
	ListOpenPolls(ctx context.Context, limit, offset int) ([]*models.Poll, error)
	Close(ctx context.Context, pollID uint) error
	SaveOption(ctx context.Context, option *models.PollOption) error
	SaveVote(ctx context.Context, vote *models.PollVote) error
	VoteByPollAndMember(ctx context.Context, pollID, memberID uint) (*models.PollVote, error)
	Results(ctx context.Context, pollID uint) ([]*models.PollOptionResult, error)
}

// ClubRepository defines operations for clubs and memberships
type ClubRepository interface {
	Repository[models.Club, models.ClubFilter]
	ByName(ctx context.Context, name string) (*models.Club, error)
	ListActiveClubs(ctx context.Context, limit, offset int) ([]*models.Club, error)
	SaveMembership(ctx context.Context, membership *models.ClubMembership) error
	MembershipByClubAndMember(ctx context.Context, clubID, memberID uint) (*models.ClubMembership, error)
	ListMemberships(ctx context.Context, clubID uint, limit, offset int) ([]*models.ClubMembership, error)
	ListClubsByMember(ctx context.Context, memberID uint) ([]*models.Club, error)
	RemoveMembership(ctx context.Context, clubID, memberID uint) error
	CountMembers(ctx context.Context, clubID uint) (int64, error)
}

// EventRepository defines operations for events and RSVPs
type EventRepository interface {
	Repository[models.Event, models.EventFilter]
	ListUpcoming(ctx context.Context, after time.Time, limit, offset int) ([]*models.Event, error)
	ListByClub(ctx context.Context, clubID uint, limit, offset int) ([]*models.Event, error)
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]*models.Event, error)
	MarkRemindersSent(ctx context.Context, eventID uint, at time.Time) error
	UpsertRSVP(ctx context.Context, rsvp *models.EventRSVP) error
	RSVPByEventAndMember(ctx context.Context, eventID, memberID uint) (*models.EventRSVP, error)
	ListRSVPs(ctx context.Context, eventID uint, status string) ([]*models.EventRSVP, error)
	CountGoing(ctx context.Context, eventID uint) (int64, error)
}
