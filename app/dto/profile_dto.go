package dto

// GetProfileResponse represents the member profile payload
type GetProfileResponse struct {
	Member MemberDTO `json:"member"`
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name,omitempty" validate:"omitempty,max=255,alpha_space"`
	LastName       *string `json:"last_name,omitempty" validate:"omitempty,max=255,alpha_space"`
	MajorID        *uint   `json:"major_id,omitempty" validate:"omitempty"`
	GraduationYear *int    `json:"graduation_year,omitempty" validate:"omitempty,min=1950,max=2100"`
}

// UpdateProfileResponse represents the response after a profile update
type UpdateProfileResponse struct {
	Message string    `json:"message"`
	Member  MemberDTO `json:"member"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8"`
	NewPassword     string `json:"new_password" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// ChangePasswordResponse represents the response after a password change
type ChangePasswordResponse struct {
	Message string `json:"message"`
}
