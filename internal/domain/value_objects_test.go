package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTitle(t *testing.T) {
	title, err := NewTitle("  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", title.String())

	_, err = NewTitle("   ")
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = NewTitle(strings.Repeat("a", 256))
	assert.ErrorIs(t, err, ErrTitleTooLong)
}

func TestNewEmail(t *testing.T) {
	email, err := NewEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email.String())

	for _, bad := range []string{"", "alice", "alice@", "Alice <alice@example.com>"} {
		_, err := NewEmail(bad)
		assert.True(t, errors.Is(err, ErrInvalidEmail), "input %q", bad)
	}
}

func TestNewUserRole(t *testing.T) {
	role, err := NewUserRole("admin")
	require.NoError(t, err)
	assert.Equal(t, UserRoleAdmin, role)

	role, err = NewUserRole("USER")
	require.NoError(t, err)
	assert.Equal(t, UserRoleUser, role)

	_, err = NewUserRole("root")
	assert.ErrorIs(t, err, ErrInvalidUserRole)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Secret123"))
	assert.ErrorIs(t, ValidatePassword("Short1A"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword("nouppercase1"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword("NoDigitsHere"), ErrWeakPassword)
}
