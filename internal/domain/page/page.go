// Package page provides pagination primitives shared by listing operations.
package page

import (
	"artfolio/internal/core/apperror"
)

// Defaults for listing endpoints.
const (
	DefaultPageNo = 1
	DefaultLimit  = 20
)

// Request carries validated pagination parameters.
type Request struct {
	PageNo int
	Limit  int
}

// DefaultRequest returns the first page with the default limit.
func DefaultRequest() Request {
	return Request{PageNo: DefaultPageNo, Limit: DefaultLimit}
}

// NewRequest validates page_no and limit. Both must be positive integers;
// zero values fall back to defaults.
func NewRequest(pageNo, limit int) (Request, error) {
	if pageNo == 0 {
		pageNo = DefaultPageNo
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if pageNo < 1 || limit < 1 {
		return Request{}, apperror.NewValidation("both the limit and page number must be positive integers").
			WithDetail("page_no", pageNo).
			WithDetail("limit", limit)
	}
	return Request{PageNo: pageNo, Limit: limit}, nil
}

// Offset returns the row offset for the requested page.
func (r Request) Offset() int {
	return (r.PageNo - 1) * r.Limit
}

// Page is one window of a listing plus the total page count.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
}

// New builds a Page from a result window and the total row count.
// An empty collection has zero pages.
func New[T any](items []T, totalCount int, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		TotalPages: TotalPages(totalCount, limit),
	}
}

// TotalPages computes ceil(count/limit).
func TotalPages(count, limit int) int {
	if count <= 0 || limit <= 0 {
		return 0
	}
	return (count + limit - 1) / limit
}
