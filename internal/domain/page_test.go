package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequest_Valid(t *testing.T) {
	req, err := NewPageRequest(3, 20, 100)

	require.NoError(t, err)
	assert.Equal(t, 3, req.Page())
	assert.Equal(t, 20, req.Size())
	assert.Equal(t, 40, req.Offset())
}

func TestNewPageRequest_FirstPageHasZeroOffset(t *testing.T) {
	req, err := NewPageRequest(1, 10, 100)

	require.NoError(t, err)
	assert.Equal(t, 0, req.Offset())
}

func TestNewPageRequest_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		size    int
		wantErr error
	}{
		{"zero page", 0, 10, ErrInvalidPage},
		{"negative page", -1, 10, ErrInvalidPage},
		{"zero size", 1, 0, ErrInvalidPageSize},
		{"negative size", 1, -5, ErrInvalidPageSize},
		{"size above max", 1, 101, ErrInvalidPageSize},
		{"overflowing page", 1<<62 + 1, 10, ErrInvalidPage},
		{"max int page", math.MaxInt, 2, ErrInvalidPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPageRequest(tt.page, tt.size, 100)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNewPageRequest_SizeAtMaxAccepted(t *testing.T) {
	req, err := NewPageRequest(1, 100, 100)

	require.NoError(t, err)
	assert.Equal(t, 100, req.Size())
}

func TestPage_TotalPages(t *testing.T) {
	tests := []struct {
		total int64
		size  int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{26, 5, 6},
	}

	for _, tt := range tests {
		req, err := NewPageRequest(1, tt.size, 100)
		require.NoError(t, err)

		page := NewPage([]TodoSummary{}, req, tt.total)
		assert.Equal(t, tt.want, page.TotalPages(), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestNewPage_KeepsTotalIndependentOfContent(t *testing.T) {
	req, err := NewPageRequest(2, 2, 100)
	require.NoError(t, err)

	page := NewPage([]TodoSummary{{Title: "a"}}, req, 3)

	assert.Len(t, page.Content, 1)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Size)
}

func TestNewPage_NilContentBecomesEmpty(t *testing.T) {
	req, err := NewPageRequest(1, 10, 100)
	require.NoError(t, err)

	page := NewPage[TodoSummary](nil, req, 0)

	require.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
}

func TestNewPageRequest_LargestAddressablePage(t *testing.T) {
	page := math.MaxInt/10 + 1

	req, err := NewPageRequest(page, 10, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, req.Offset(), 0)

	_, err = NewPageRequest(page+1, 10, 100)
	require.ErrorIs(t, err, ErrInvalidPage)
}
