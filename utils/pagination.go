package utils

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit  = 10
	DefaultOffset = 0
	MaxLimit      = 100
)

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Page   int `json:"page"`
}

type PaginationMeta struct {
	Total      int `json:"total"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// ParsePaginationParams reads limit/offset from query parameters, falling
// back to defaults on missing or non-numeric input. Limit is clamped to
// [1, MaxLimit] and offset to >= 0.
func ParsePaginationParams(query url.Values) Pagination {
	limit := DefaultLimit
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset := DefaultOffset
	if raw := query.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
		Page:   offset/limit + 1,
	}
}

func CalculatePagination(total, limit, offset int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationMeta{
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		Page:       offset/limit + 1,
		TotalPages: totalPages,
	}
}
