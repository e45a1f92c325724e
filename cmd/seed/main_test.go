package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertteam/expert/internal/domain"
)

type recordingCopier struct {
	batches [][]domain.User
	err     error
}

func (c *recordingCopier) CopyUsers(_ context.Context, users []domain.User) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.batches = append(c.batches, append([]domain.User(nil), users...))
	return int64(len(users)), nil
}

func TestSeed_Batches(t *testing.T) {
	copier := &recordingCopier{}
	var progress []int64

	inserted, err := seed(context.Background(), copier, 25, 10, "hash", func(n int64) {
		progress = append(progress, n)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(25), inserted)
	require.Len(t, copier.batches, 3)
	assert.Len(t, copier.batches[0], 10)
	assert.Len(t, copier.batches[2], 5)
	assert.Equal(t, []int64{10, 20, 25}, progress)

	seen := make(map[string]bool)
	for _, b := range copier.batches {
		for _, u := range b {
			assert.True(t, strings.HasPrefix(u.Nickname, "user_"))
			assert.False(t, seen[u.Nickname], "duplicate nickname %s", u.Nickname)
			seen[u.Nickname] = true
			assert.Equal(t, "hash", u.PasswordHash)
			assert.Equal(t, domain.UserRoleUser, u.Role)
		}
	}
}

func TestSeed_StopsOnError(t *testing.T) {
	copier := &recordingCopier{err: assert.AnError}

	inserted, err := seed(context.Background(), copier, 5, 2, "hash", nil)
	require.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, inserted)
}

func TestSeed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seed(ctx, &recordingCopier{}, 5, 2, "hash", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFirstPositive(t *testing.T) {
	assert.Equal(t, 3, firstPositive(0, 3, 7))
	assert.Equal(t, 7, firstPositive(-1, 0, 7))
	assert.Equal(t, 0, firstPositive())
}
