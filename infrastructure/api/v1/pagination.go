// Package v1 implements the versioned HTTP API handlers.
package v1

import (
	"net/http"
	"strconv"

	"github.com/docubrain/docubrain/infrastructure/api/v1/dto"
)

// DefaultPageSize is the default number of items per page.
const DefaultPageSize = 20

// MaxPageSize is the maximum allowed page size.
const MaxPageSize = 100

// PaginationParams holds pagination parameters parsed from query strings.
type PaginationParams struct {
	page     int
	pageSize int
}

// ParsePagination parses page and page_size query parameters.
// Default: page=1, page_size=20. Max page_size: 100.
func ParsePagination(r *http.Request) PaginationParams {
	params := PaginationParams{page: 1, pageSize: DefaultPageSize}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			params.page = page
		}
	}
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size >= 1 {
			params.pageSize = min(size, MaxPageSize)
		}
	}

	return params
}

// Page returns the page number (1-indexed).
func (p PaginationParams) Page() int { return p.page }

// PageSize returns the page size.
func (p PaginationParams) PageSize() int { return p.pageSize }

// Offset returns the offset for database queries.
func (p PaginationParams) Offset() int {
	return (p.page - 1) * p.pageSize
}

// Limit returns the limit for database queries.
func (p PaginationParams) Limit() int {
	return p.pageSize
}

// Meta builds list metadata from the params and total count.
func (p PaginationParams) Meta(totalCount int64) dto.ListMeta {
	totalPages := 0
	if p.pageSize > 0 {
		totalPages = (int(totalCount) + p.pageSize - 1) / p.pageSize
	}
	return dto.ListMeta{
		Page:       p.page,
		PageSize:   p.pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
