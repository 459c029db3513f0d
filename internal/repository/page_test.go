package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	got := Paginate(items, Page{Page: 2, Limit: 3})
	assert.Equal(t, []int{4, 5, 6}, got.Data)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 3, got.Limit)
	assert.Equal(t, 3, got.TotalPages)

	got = Paginate(items, Page{Page: 3, Limit: 3})
	assert.Equal(t, []int{7}, got.Data)

	// за последней страницей пусто, но не nil
	got = Paginate(items, Page{Page: 4, Limit: 3})
	assert.NotNil(t, got.Data)
	assert.Empty(t, got.Data)
	assert.Equal(t, 7, got.Total)

	got = Paginate(items, Page{Page: math.MaxInt, Limit: MaxPageLimit})
	assert.Empty(t, got.Data)
}

func TestPaginate_Defaults(t *testing.T) {
	got := Paginate([]string{"a", "b"}, Page{})
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, DefaultPageLimit, got.Limit)
	assert.Equal(t, []string{"a", "b"}, got.Data)
	assert.Equal(t, 1, got.TotalPages)

	got = Paginate([]string{}, Page{Limit: 1000})
	assert.Equal(t, MaxPageLimit, got.Limit)
	assert.Equal(t, 0, got.TotalPages)
	assert.Empty(t, got.Data)
}
