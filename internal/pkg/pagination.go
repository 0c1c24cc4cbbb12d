package pkg

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page  int    `json:"page" form:"page"`
	Limit int    `json:"limit" form:"limit"`
	Sort  string `json:"sort" form:"sort"`
	Order string `json:"order" form:"order"`
}

// PaginationResult represents pagination result
type PaginationResult struct {
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// Default pagination values
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultSort  = "created_at"
	DefaultOrder = "desc"
)

// NewPaginationParams creates pagination parameters from Gin context
func NewPaginationParams(c *gin.Context) *PaginationParams {
	params := &PaginationParams{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  DefaultSort,
		Order: DefaultOrder,
	}

	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			params.Page = page
		}
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			if limit > MaxLimit {
				params.Limit = MaxLimit
			} else {
				params.Limit = limit
			}
		}
	}

	if sort := c.Query("sort"); sort != "" {
		params.Sort = sort
	}

	if order := c.Query("order"); order == "asc" || order == "desc" {
		params.Order = order
	}

	return params
}

// GetOffset returns the query offset for the current page
func (p *PaginationParams) GetOffset() int {
	return (p.Page - 1) * p.Limit
}

// GetSortDirection returns the mongo sort direction
func (p *PaginationParams) GetSortDirection() int {
	if p.Order == "asc" {
		return 1
	}
	return -1
}

// NewPaginationResult builds a pagination result from data and totals
func NewPaginationResult(data interface{}, total int64, params *PaginationParams) *PaginationResult {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))

	return &PaginationResult{
		Data: data,
		Pagination: PaginationMeta{
			CurrentPage:  params.Page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: params.Limit,
			HasNext:      params.Page < totalPages,
			HasPrev:      params.Page > 1,
		},
	}
}
