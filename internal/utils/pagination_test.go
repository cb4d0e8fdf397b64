package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10), "empty result still has one page")
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 1, TotalPages(5, 0), "non-positive page size falls back to 10")
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, total := Paginate(items, 1, 2)
	assert.Equal(t, []int{1, 2}, page)
	assert.Equal(t, 3, total)

	page, _ = Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, page, "last page may be short")

	page, total = Paginate(items, 4, 2)
	assert.Nil(t, page, "page past the end")
	assert.Equal(t, 3, total)

	page, total = Paginate(items, 0, 2)
	assert.Nil(t, page)
	assert.Equal(t, 3, total)

	page, total = Paginate([]int{}, 1, 2)
	assert.Empty(t, page)
	assert.Equal(t, 1, total)
}
