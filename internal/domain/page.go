package domain

import (
	"fmt"
	"math"
)

// PageRequest is a validated one-based page index and page size.
type PageRequest struct {
	page int
	size int
}

// NewPageRequest validates page and size. Out-of-range values are rejected,
// never clamped: page must be >= 1, size must be in [1, maxSize] and the
// resulting offset must fit in an int.
func NewPageRequest(page, size, maxSize int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, fmt.Errorf("%w: got %d", ErrInvalidPage, page)
	}
	if size < 1 || size > maxSize {
		return PageRequest{}, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidPageSize, maxSize, size)
	}
	if page-1 > math.MaxInt/size {
		return PageRequest{}, fmt.Errorf("%w: page %d with size %d is beyond the last addressable row", ErrInvalidPage, page, size)
	}
	return PageRequest{page: page, size: size}, nil
}

// Page returns the one-based page index.
func (p PageRequest) Page() int { return p.page }

// Size returns the page size.
func (p PageRequest) Size() int { return p.size }

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int { return (p.page - 1) * p.size }

// Page is one page of results together with the total matching the same filter.
type Page[T any] struct {
	Content []T
	Page    int
	Size    int
	Total   int64
}

// NewPage assembles a page envelope. Total is taken as given and
// never derived from the length of content.
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	return &Page[T]{
		Content: content,
		Page:    req.Page(),
		Size:    req.Size(),
		Total:   total,
	}
}

// TotalPages returns ceil(Total / Size).
func (p *Page[T]) TotalPages() int64 {
	if p.Size <= 0 {
		return 0
	}
	size := int64(p.Size)
	return (p.Total + size - 1) / size
}
