package domain

import "math"

const (
	DefaultPage     = 0
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a zero-indexed page selector.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest validates page and size and returns the selector.
func NewPageRequest(page, size int) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, NewValidationError("page", "must be greater than or equal to 0")
	}
	if size < 1 || size > MaxPageSize {
		return PageRequest{}, NewValidationError("size", "must be between 1 and 100")
	}
	if page > (math.MaxInt-size)/size {
		return PageRequest{}, NewValidationError("page", "is too large")
	}
	return PageRequest{Page: page, Size: size}, nil
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of a filtered result set. TotalItems counts the whole
// filtered set, not just Items.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int64
}

// NewPage assembles a page from the items and the filtered total.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Number: req.Page, Size: req.Size, TotalItems: total}
}

// TotalPages is ceil(TotalItems / Size).
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.Size) - 1) / int64(p.Size))
}

// Window returns the [start, end) bounds of this page inside a slice of n
// elements. Used by in-memory gateways.
func (p PageRequest) Window(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.Size
	if end > n {
		end = n
	}
	return start, end
}
