package domain

import (
	"fmt"
	"math"
)

// PageRequest addresses one page of the feed. Index is zero-based.
type PageRequest struct {
	Index int
	Size  int
}

// Validate rejects negative indexes and non-positive sizes.
func (p PageRequest) Validate() error {
	if p.Index < 0 {
		return fmt.Errorf("%w: page must be >= 0", ErrInvalidInput)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: page size must be > 0", ErrInvalidInput)
	}
	return nil
}

// Offset is the number of rows preceding the page. ok is false when that
// number does not fit in an int; such a page lies past the end of any feed.
func (p PageRequest) Offset() (offset int, ok bool) {
	if p.Size > 0 && p.Index > math.MaxInt/p.Size {
		return 0, false
	}
	return p.Index * p.Size, true
}

// PostSummary is the feed view of a post. It carries no credential or role data.
type PostSummary struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	Username string `json:"username"`
}

// FeedPage is one page of the feed plus totals computed over the full set.
type FeedPage struct {
	Items         []PostSummary
	Page          int
	PageSize      int
	TotalPages    int
	TotalElements int   // items on this page
	TotalItems    int64 // items across all pages
}

// TotalPages returns ceil(total/size), or zero when either is non-positive.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// NewFeedPage builds a page from the rows returned for req and the total row count.
func NewFeedPage(req PageRequest, rows []*Post, total int64) *FeedPage {
	items := make([]PostSummary, 0, len(rows))
	for _, p := range rows {
		items = append(items, PostSummary{ID: p.ID, Content: p.Content, Username: p.OwnerUsername})
	}
	return &FeedPage{
		Items:         items,
		Page:          req.Index,
		PageSize:      req.Size,
		TotalPages:    TotalPages(total, req.Size),
		TotalElements: len(items),
		TotalItems:    total,
	}
}
