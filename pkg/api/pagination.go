package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest carries the page window requested by a list endpoint.
type PageRequest struct {
	Page     int
	PageSize int
}

// ParsePagination reads the page and pageSize query parameters,
// clamping out-of-range values instead of rejecting them.
func ParsePagination(c *gin.Context) PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return PageRequest{Page: page, PageSize: pageSize}
}

// Offset is the number of records to skip for this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit is the page size.
func (p PageRequest) Limit() int {
	return p.PageSize
}

// PageResponse is the envelope every paginated listing returns.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPageResponse wraps one page of results with its position in the
// full result set. TotalPages never drops below 1, even for an empty
// set, so clients can always render a pager.
func NewPageResponse[T any](data []T, page PageRequest, totalItems int64) PageResponse[T] {
	totalPages := (totalItems + int64(page.PageSize) - 1) / int64(page.PageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	return PageResponse[T]{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    int64(page.Page) < totalPages,
		HasPrev:    page.Page > 1,
	}
}
