package utils

import (
	"net/http"
	"strconv"
)

const DefaultPageSize = 10

// ParsePagination reads page and limit query parameters, applying the
// defaults of page 1 and limit 10. Offset is (page-1)*limit.
func ParsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = DefaultPageSize
	}
	return page, limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}
