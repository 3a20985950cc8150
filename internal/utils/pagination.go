// Package utils contains small helpers shared across the HTTP layer.
package utils

import "strconv"

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int   `json:"page" example:"1"`
	PageSize   int   `json:"page_size" example:"20"`
	Total      int64 `json:"total" example:"57"`
	TotalPages int   `json:"total_pages" example:"3"`
}

// ParsePagination parses page/page_size query values with sane defaults
// and an upper bound on the page size.
func ParsePagination(pageStr, sizeStr string) (page, pageSize int) {
	page = defaultPage
	if v, err := strconv.Atoi(pageStr); err == nil && v > 0 {
		page = v
	}
	pageSize = defaultPageSize
	if v, err := strconv.Atoi(sizeStr); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// NewPagination computes the page metadata for a total row count.
func NewPagination(page, pageSize int, total int64) Pagination {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}
