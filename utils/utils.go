// Package utils provides utility functions for the application.
package utils

import (
	"crypto/rand"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uidAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// RandomUID returns a random base62 identifier of the given length
func RandomUID(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	for i, b := range bytes {
		bytes[i] = uidAlphabet[int(b)%len(uidAlphabet)]
	}
	return string(bytes), nil
}

// IsUniqueViolation reports whether err is a unique constraint violation.
// The gorm connection uses the pgx driver, so violations surface as
// *pgconn.PgError; the pq branch covers the database/sql connections used
// by the test harness.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
