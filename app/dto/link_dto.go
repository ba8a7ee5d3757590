package dto

import "time"

// CreateLinkRequest represents a request to shorten a URL
type CreateLinkRequest struct {
	TargetURL string  `json:"target_url" validate:"required,url,max=2048"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=255"`
}

// CreateLinkResponse represents the response after link creation
type CreateLinkResponse struct {
	Message string  `json:"message"`
	Link    LinkDTO `json:"link"`
}

// LinkDTO represents a shortened link for API responses
type LinkDTO struct {
	ID        uint      `json:"id"`
	UID       string    `json:"uid"`
	TargetURL string    `json:"target_url"`
	ShortURL  string    `json:"short_url"`
	Title     *string   `json:"title,omitempty"`
	QRCodeURL *string   `json:"qr_code_url,omitempty"`
	IsActive  *bool     `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLinksResponse represents a page of the member's links
type ListLinksResponse struct {
	Links []LinkDTO `json:"links"`
	Total int64     `json:"total"`
}

// LinkStatsDTO represents aggregated visit stats for one link
type LinkStatsDTO struct {
	LinkID         uint   `json:"link_id"`
	UID            string `json:"uid"`
	TargetURL      string `json:"target_url"`
	TotalVisits    int64  `json:"total_visits"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// LinkStatsResponse represents the stats payload for one link
type LinkStatsResponse struct {
	Stats  LinkStatsDTO   `json:"stats"`
	Visits []LinkVisitDTO `json:"visits,omitempty"`
}

// LinkVisitDTO represents one visitor row of a link
type LinkVisitDTO struct {
	IP             string    `json:"ip"`
	UserAgent      *string   `json:"user_agent,omitempty"`
	VisitCount     uint      `json:"visit_count"`
	FirstVisitedAt time.Time `json:"first_visited_at"`
	LastVisitedAt  time.Time `json:"last_visited_at"`
}

// OwnerStatsResponse represents visit stats for every link of a member
type OwnerStatsResponse struct {
	Stats []LinkStatsDTO `json:"stats"`
}

// GenerateQRCodeResponse represents the response after QR code generation
type GenerateQRCodeResponse struct {
	Message   string `json:"message"`
	QRCodeURL string `json:"qr_code_url"`
}
