package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/posts", nil)
	page, limit := ParsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}

func TestParsePaginationExplicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/posts?page=3&limit=25", nil)
	page, limit := ParsePagination(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)
}

func TestParsePaginationRejectsGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/posts?page=-2&limit=abc", nil)
	page, limit := ParsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}

func TestTotalPages(t *testing.T) {
	assert.EqualValues(t, 3, TotalPages(25, 10))
	assert.EqualValues(t, 1, TotalPages(10, 10))
	assert.EqualValues(t, 2, TotalPages(11, 10))
	assert.EqualValues(t, 0, TotalPages(0, 10))
}
