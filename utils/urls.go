// Package utils provides utility functions for the application.
package utils

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// PrepareURL appends the given query parameters to a base URL.
// Existing query parameters on the base URL are preserved.
func PrepareURL(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// UniqueFilename returns "<prefix>-<uuid><ext>". The extension may be passed
// with or without a leading dot; the result always carries exactly one.
func UniqueFilename(prefix, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("-")
	b.WriteString(uuid.New().String())
	if ext != "" {
		b.WriteString(".")
		b.WriteString(ext)
	}
	return b.String()
}
