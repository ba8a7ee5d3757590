package dto

import "time"

// CreatePollRequest represents a request to create a poll
type CreatePollRequest struct {
	Question string     `json:"question" validate:"required,max=512"`
	Options  []string   `json:"options" validate:"required,min=2,max=20,dive,required,max=255"`
	ClubID   *uint      `json:"club_id,omitempty" validate:"omitempty"`
	ClosesAt *time.Time `json:"closes_at,omitempty" validate:"omitempty"`
}

// CreatePollResponse represents the response after poll creation
type CreatePollResponse struct {
	Message string  `json:"message"`
	Poll    PollDTO `json:"poll"`
}

// PollDTO represents a poll for API responses
type PollDTO struct {
	ID        uint            `json:"id"`
	Question  string          `json:"question"`
	CreatorID uint            `json:"creator_id"`
	ClubID    *uint           `json:"club_id,omitempty"`
	Status    string          `json:"status"`
	ClosesAt  *time.Time      `json:"closes_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Options   []PollOptionDTO `json:"options"`
}

// PollOptionDTO represents one choice of a poll
type PollOptionDTO struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// ListPollsResponse represents a page of open polls
type ListPollsResponse struct {
	Polls []PollDTO `json:"polls"`
	Total int64     `json:"total"`
}

// VoteRequest represents a vote on a poll option
type VoteRequest struct {
	OptionID uint `json:"option_id" validate:"required"`
}

// VoteResponse represents the response after voting
type VoteResponse struct {
	Message string `json:"message"`
}

// PollResultsResponse represents tallied poll results
type PollResultsResponse struct {
	Poll    PollDTO              `json:"poll"`
	Results []PollOptionTallyDTO `json:"results"`
	Total   int64                `json:"total_votes"`
}

// PollOptionTallyDTO represents the vote count for one option
type PollOptionTallyDTO struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
	Votes    int64  `json:"votes"`
}

// ClosePollResponse represents the response after closing a poll
type ClosePollResponse struct {
	Message string `json:"message"`
}
