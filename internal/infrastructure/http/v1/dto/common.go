// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"artfolio/internal/domain/page"
)

// --- Pagination ---

// PaginationRequest contains pagination query parameters.
type PaginationRequest struct {
	PageNo int `form:"page_no"`
	Limit  int `form:"limit"`
}

// ToPage validates the parameters into a page request.
func (p PaginationRequest) ToPage() (page.Request, error) {
	return page.NewRequest(p.PageNo, p.Limit)
}

// --- Generic responses ---

// SuccessResponse signals a mutation that has no payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse returns an identifier of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}
