package dto

import "time"

// CreateClubRequest represents a request to register a club
type CreateClubRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// CreateClubResponse represents the response after club creation
type CreateClubResponse struct {
	Message string  `json:"message"`
	Club    ClubDTO `json:"club"`
}

// ClubDTO represents a club for API responses
type ClubDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     uint      `json:"owner_id"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	IsActive    *bool     `json:"is_active"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListClubsResponse represents a page of active clubs
type ListClubsResponse struct {
	Clubs []ClubDTO `json:"clubs"`
	Total int64     `json:"total"`
}

// JoinClubResponse represents the response after joining a club
type JoinClubResponse struct {
	Message string `json:"message"`
}

// LeaveClubResponse represents the response after leaving a club
type LeaveClubResponse struct {
	Message string `json:"message"`
}

// ClubMemberDTO represents one member row of a club roster
type ClubMemberDTO struct {
	MemberID  uint      `json:"member_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// ClubMembersResponse represents a club's roster
type ClubMembersResponse struct {
	Members []ClubMemberDTO `json:"members"`
	Total   int64           `json:"total"`
}
