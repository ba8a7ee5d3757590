package dto

// MajorDTO represents a field of study for API responses
type MajorDTO struct {
	ID   uint    `json:"id"`
	Name string  `json:"name"`
	Code *string `json:"code,omitempty"`
}

// ListMajorsResponse represents the full list of majors
type ListMajorsResponse struct {
	Majors []MajorDTO `json:"majors"`
}

// ImportMajorsResponse represents the outcome of a CSV import
type ImportMajorsResponse struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}
