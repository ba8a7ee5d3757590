package dto

import "time"

// CreateEventRequest represents a request to schedule a club event
type CreateEventRequest struct {
	ClubID      uint       `json:"club_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=255"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty" validate:"omitempty"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=1"`
}

// CreateEventResponse represents the response after event creation
type CreateEventResponse struct {
	Message string   `json:"message"`
	Event   EventDTO `json:"event"`
}

// EventDTO represents an event for API responses
type EventDTO struct {
	ID          uint       `json:"id"`
	ClubID      uint       `json:"club_id"`
	ClubName    string     `json:"club_name,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	GoingCount  int64      `json:"going_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ListEventsResponse represents a page of upcoming events
type ListEventsResponse struct {
	Events []EventDTO `json:"events"`
	Total  int64      `json:"total"`
}

// RSVPRequest represents a member's response to an event
type RSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=going declined"`
}

// RSVPResponse represents the response after an RSVP
type RSVPResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// EventRSVPDTO represents one attendee row of an event
type EventRSVPDTO struct {
	MemberID  uint      `json:"member_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventAttendeesResponse represents an event's attendee list
type EventAttendeesResponse struct {
	Attendees []EventRSVPDTO `json:"attendees"`
	Total     int64          `json:"total"`
}
