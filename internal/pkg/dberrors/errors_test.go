package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"})

	assert.True(t, IsDuplicateConstraintError(err, "profiles_email_key"))
	assert.False(t, IsDuplicateConstraintError(err, "other_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "profiles_email_key"))
}

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, IsUndefinedTable(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, IsUndefinedTable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUndefinedTable(nil))
}
