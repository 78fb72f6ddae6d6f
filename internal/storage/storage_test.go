package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func Test_IsUniqueViolation_WithPgUniqueError_ReturnsTrue(t *testing.T) {
	err := fmt.Errorf("failed to insert: %w", &pgconn.PgError{Code: "23505"})

	assert.True(t, IsUniqueViolation(err))
}

func Test_IsUniqueViolation_WithGormDuplicatedKey_ReturnsTrue(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
}

func Test_IsUniqueViolation_WithOtherErrors_ReturnsFalse(t *testing.T) {
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}
