// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// SignupRequest represents the signup form data
type SignupRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=255,alpha_space"`
	LastName        string `json:"last_name" validate:"required,max=255,alpha_space"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`

	// Optional academic profile
	MajorID        *uint `json:"major_id,omitempty" validate:"omitempty"`
	GraduationYear *int  `json:"graduation_year,omitempty" validate:"omitempty,min=1950,max=2100"`
}

// SignupResponse represents the response after successful signup
type SignupResponse struct {
	Message      string        `json:"message"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refresh_token"`
	Member       AuthMemberDTO `json:"member"`
}

// AuthMemberDTO represents member data returned with authentication responses
type AuthMemberDTO struct {
	ID             uint    `json:"id"`
	UUID           string  `json:"uuid"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Major          *string `json:"major,omitempty"`
	GraduationYear *int    `json:"graduation_year,omitempty"`
	IsAdmin        *bool   `json:"is_admin"`
	IsActive       *bool   `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
}

// MemberSessionDTO represents issued session tokens
type MemberSessionDTO struct {
	SessionToken string  `json:"session_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in"`
	TokenType    string  `json:"token_type"`
	CreatedAt    string  `json:"created_at"`
}

// MemberDTO represents full member data for API responses
type MemberDTO struct {
	ID             uint      `json:"id"`
	UUID           string    `json:"uuid"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	MajorID        *uint     `json:"major_id,omitempty"`
	Major          *string   `json:"major,omitempty"`
	GraduationYear *int      `json:"graduation_year,omitempty"`
	IsAdmin        *bool     `json:"is_admin"`
	IsActive       *bool     `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
