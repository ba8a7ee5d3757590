package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"plain error", errors.New("boom"), false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("save: %w", gorm.ErrDuplicatedKey), true},
		{"pgx unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pgx unique violation", fmt.Errorf("save: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pgx other sqlstate", &pgconn.PgError{Code: "23503"}, false},
		{"pq unique violation", &pq.Error{Code: "23505"}, true},
		{"pq other sqlstate", &pq.Error{Code: "40001"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestRandomUID(t *testing.T) {
	uid, err := RandomUID(8)
	assert.NoError(t, err)
	assert.Len(t, uid, 8)

	other, err := RandomUID(8)
	assert.NoError(t, err)
	assert.NotEqual(t, uid, other)
}
