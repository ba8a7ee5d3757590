// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"gorm.io/gorm"
)

// EventFlow handles club event scheduling and RSVPs
type EventFlow interface {
	CreateEvent(ctx context.Context, memberID uint, req *dto.CreateEventRequest, metadata *ClientMetadata) (*dto.CreateEventResponse, error)
	ListUpcoming(ctx context.Context, page *dto.PaginationRequest) (*dto.ListEventsResponse, error)
	ListByClub(ctx context.Context, clubID uint, page *dto.PaginationRequest) (*dto.ListEventsResponse, error)
	// RSVP records the member's latest response. Re-responding replaces
	// the previous status instead of adding a second row.
	RSVP(ctx context.Context, memberID, eventID uint, req *dto.RSVPRequest) (*dto.RSVPResponse, error)
	Attendees(ctx context.Context, eventID uint) (*dto.EventAttendeesResponse, error)
}

// EventFlowImpl implements the event business flow
type EventFlowImpl struct {
	eventRepo repository.EventRepository
	clubRepo  repository.ClubRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewEventFlow creates a new event flow instance
func NewEventFlow(
	eventRepo repository.EventRepository,
	clubRepo repository.ClubRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) EventFlow {
	return &EventFlowImpl{
		eventRepo: eventRepo,
		clubRepo:  clubRepo,
		auditRepo: auditRepo,
		db:        db,
	}
}

// CreateEvent schedules an event for a club. Only club managers may
// schedule events.
func (f *EventFlowImpl) CreateEvent(ctx context.Context, memberID uint, req *dto.CreateEventRequest, metadata *ClientMetadata) (*dto.CreateEventResponse, error) {
	if req.StartsAt.Before(utils.UTCNow()) {
		return nil, ErrEventInPast
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return nil, NewBusinessError("CREATE_EVENT_FAILED", "Event end time must be after its start time", nil)
	}

	club, err := f.clubRepo.ByID(ctx, req.ClubID)
	if err != nil {
		return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
	}
	if club == nil {
		return nil, ErrClubNotFound
	}
	if !utils.IsTrue(club.IsActive) {
		return nil, ErrClubInactive
	}

	membership, err := f.clubRepo.MembershipByClubAndMember(ctx, club.ID, memberID)
	if err != nil {
		return nil, NewBusinessError("CREATE_EVENT_FAILED", "Failed to lookup club membership", err)
	}
	if membership == nil || !membership.CanManage() {
		return nil, ErrClubAccessDenied
	}

	event := &models.Event{
		ClubID:      club.ID,
		CreatorID:   memberID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	}

	if err := f.eventRepo.Save(ctx, event); err != nil {
		return nil, NewBusinessError("CREATE_EVENT_FAILED", "Failed to create event", err)
	}

	msg := fmt.Sprintf("Event created: %s", event.Title)
	_ = f.createAuditLog(ctx, memberID, models.AuditActionEventCreated, msg, true, nil, metadata)

	out := toEventDTO(event, club.Name, 0)
	return &dto.CreateEventResponse{
		Message: "Event created successfully",
		Event:   out,
	}, nil
}

// ListUpcoming returns a page of events that have not started yet
func (f *EventFlowImpl) ListUpcoming(ctx context.Context, page *dto.PaginationRequest) (*dto.ListEventsResponse, error) {
	page.Normalize()

	now := utils.UTCNow()
	events, err := f.eventRepo.ListUpcoming(ctx, now, page.PageSize, page.Offset())
	if err != nil {
		return nil, NewBusinessError("LIST_EVENTS_FAILED", "Failed to list events", err)
	}

	total, err := f.eventRepo.Count(ctx, models.EventFilter{StartsAfter: &now})
	if err != nil {
		return nil, NewBusinessError("LIST_EVENTS_FAILED", "Failed to count events", err)
	}

	out, err := f.toEventDTOs(ctx, events)
	if err != nil {
		return nil, err
	}

	return &dto.ListEventsResponse{Events: out, Total: total}, nil
}

// ListByClub returns a page of a club's events, soonest first
func (f *EventFlowImpl) ListByClub(ctx context.Context, clubID uint, page *dto.PaginationRequest) (*dto.ListEventsResponse, error) {
	page.Normalize()

	club, err := f.clubRepo.ByID(ctx, clubID)
	if err != nil {
		return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
	}
	if club == nil {
		return nil, ErrClubNotFound
	}

	events, err := f.eventRepo.ListByClub(ctx, club.ID, page.PageSize, page.Offset())
	if err != nil {
		return nil, NewBusinessError("LIST_EVENTS_FAILED", "Failed to list events", err)
	}

	total, err := f.eventRepo.Count(ctx, models.EventFilter{ClubID: &club.ID})
	if err != nil {
		return nil, NewBusinessError("LIST_EVENTS_FAILED", "Failed to count events", err)
	}

	out := make([]dto.EventDTO, 0, len(events))
	for _, event := range events {
		going, err := f.eventRepo.CountGoing(ctx, event.ID)
		if err != nil {
			return nil, NewBusinessError("LIST_EVENTS_FAILED", "Failed to count attendees", err)
		}
		out = append(out, toEventDTO(event, club.Name, going))
	}

	return &dto.ListEventsResponse{Events: out, Total: total}, nil
}

// RSVP records or replaces the member's response to an upcoming event
func (f *EventFlowImpl) RSVP(ctx context.Context, memberID, eventID uint, req *dto.RSVPRequest) (*dto.RSVPResponse, error) {
	if req.Status != models.RSVPStatusGoing && req.Status != models.RSVPStatusDeclined {
		return nil, ErrInvalidRSVPStatus
	}

	event, err := f.eventRepo.ByID(ctx, eventID)
	if err != nil {
		return nil, NewBusinessError("EVENT_LOOKUP_FAILED", "Failed to lookup event", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.HasStarted() {
		return nil, ErrEventInPast
	}

	if req.Status == models.RSVPStatusGoing && event.Capacity != nil {
		existing, err := f.eventRepo.RSVPByEventAndMember(ctx, event.ID, memberID)
		if err != nil {
			return nil, NewBusinessError("RSVP_FAILED", "Failed to lookup existing response", err)
		}

		// Members already marked going keep their spot when re-responding
		if existing == nil || existing.Status != models.RSVPStatusGoing {
			going, err := f.eventRepo.CountGoing(ctx, event.ID)
			if err != nil {
				return nil, NewBusinessError("RSVP_FAILED", "Failed to count attendees", err)
			}
			if going >= int64(*event.Capacity) {
				return nil, ErrEventFull
			}
		}
	}

	rsvp := &models.EventRSVP{
		EventID:  event.ID,
		MemberID: memberID,
		Status:   req.Status,
	}
	if err := f.eventRepo.UpsertRSVP(ctx, rsvp); err != nil {
		return nil, NewBusinessError("RSVP_FAILED", "Failed to record response", err)
	}

	return &dto.RSVPResponse{
		Message: "Response recorded successfully",
		Status:  req.Status,
	}, nil
}

// Attendees returns the members going to an event
func (f *EventFlowImpl) Attendees(ctx context.Context, eventID uint) (*dto.EventAttendeesResponse, error) {
	event, err := f.eventRepo.ByID(ctx, eventID)
	if err != nil {
		return nil, NewBusinessError("EVENT_LOOKUP_FAILED", "Failed to lookup event", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	rsvps, err := f.eventRepo.ListRSVPs(ctx, event.ID, models.RSVPStatusGoing)
	if err != nil {
		return nil, NewBusinessError("ATTENDEES_FAILED", "Failed to list attendees", err)
	}

	out := make([]dto.EventRSVPDTO, 0, len(rsvps))
	for _, r := range rsvps {
		out = append(out, dto.EventRSVPDTO{
			MemberID:  r.MemberID,
			FirstName: r.Member.FirstName,
			LastName:  r.Member.LastName,
			Status:    r.Status,
			UpdatedAt: r.UpdatedAt,
		})
	}

	return &dto.EventAttendeesResponse{Attendees: out, Total: int64(len(out))}, nil
}

// Private helper methods

func (f *EventFlowImpl) toEventDTOs(ctx context.Context, events []*models.Event) ([]dto.EventDTO, error) {
	out := make([]dto.EventDTO, 0, len(events))
	for _, event := range events {
		going, err := f.eventRepo.CountGoing(ctx, event.ID)
		if err != nil {
			return nil, NewBusinessError("LIST_EVENTS_FAILED", "Failed to count attendees", err)
		}
		out = append(out, toEventDTO(event, event.Club.Name, going))
	}

	return out, nil
}

func toEventDTO(event *models.Event, clubName string, goingCount int64) dto.EventDTO {
	return dto.EventDTO{
		ID:          event.ID,
		ClubID:      event.ClubID,
		ClubName:    clubName,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		Capacity:    event.Capacity,
		GoingCount:  goingCount,
		CreatedAt:   event.CreatedAt,
	}
}

func (f *EventFlowImpl) createAuditLog(ctx context.Context, memberID uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		MemberID:     &memberID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return f.auditRepo.Save(ctx, audit)
}
