// Package utils provides utility functions for the application.
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailValidator = validator.New()

// IsSchoolEmail reports whether the address is a syntactically valid email
// whose domain matches the configured school domain suffix. Any validation
// failure yields false, never an error.
func IsSchoolEmail(email, domainSuffix string) bool {
	if domainSuffix == "" {
		return false
	}
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return false
	}
	if !strings.HasPrefix(domainSuffix, "@") {
		domainSuffix = "@" + domainSuffix
	}
	return strings.HasSuffix(strings.ToLower(email), strings.ToLower(domainSuffix))
}
