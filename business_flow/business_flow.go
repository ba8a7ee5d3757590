// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthMemberDTO converts a member model to AuthMemberDTO for authentication responses
func ToAuthMemberDTO(member models.Member) dto.AuthMemberDTO {
	out := dto.AuthMemberDTO{
		ID:             member.ID,
		UUID:           member.UUID.String(),
		FirstName:      member.FirstName,
		LastName:       member.LastName,
		Email:          member.Email,
		GraduationYear: member.GraduationYear,
		IsAdmin:        member.IsAdmin,
		IsActive:       member.IsActive,
		CreatedAt:      member.CreatedAt.Format(time.RFC3339),
	}
	if member.Major != nil {
		out.Major = &member.Major.Name
	}

	return out
}

// ToMemberDTO converts a member model to the full MemberDTO
func ToMemberDTO(member models.Member) dto.MemberDTO {
	out := dto.MemberDTO{
		ID:             member.ID,
		UUID:           member.UUID.String(),
		FirstName:      member.FirstName,
		LastName:       member.LastName,
		Email:          member.Email,
		MajorID:        member.MajorID,
		GraduationYear: member.GraduationYear,
		IsAdmin:        member.IsAdmin,
		IsActive:       member.IsActive,
		CreatedAt:      member.CreatedAt,
	}
	if member.Major != nil {
		out.Major = &member.Major.Name
	}

	return out
}

func ToMemberSessionDTO(session models.MemberSession) dto.MemberSessionDTO {
	return dto.MemberSessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(session.ExpiresAt.Sub(utils.UTCNow()).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}
