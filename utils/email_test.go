package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSchoolEmail(t *testing.T) {
	const domain = "@school.edu"

	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"valid school address", "a@school.edu", true},
		{"valid school address mixed case", "A@School.EDU", true},
		{"valid but wrong domain", "a@other.edu", false},
		{"subdomain does not match suffix", "a@mail.school.edu.evil.com", false},
		{"missing at sign", "not-an-email", false},
		{"empty string", "", false},
		{"missing local part", "@school.edu", false},
		{"whitespace inside", "a b@school.edu", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSchoolEmail(tt.email, domain))
		})
	}
}

func TestIsSchoolEmailDomainNormalization(t *testing.T) {
	// Suffix may be configured with or without the leading @.
	assert.True(t, IsSchoolEmail("a@school.edu", "school.edu"))
	assert.False(t, IsSchoolEmail("a@notschool.edu", "school.edu"))
	assert.False(t, IsSchoolEmail("a@school.edu", ""))
}
