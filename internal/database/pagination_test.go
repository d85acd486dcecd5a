package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryFilterNormalize(t *testing.T) {
	tests := []struct {
		name       string
		filter     QueryFilter
		wantLimit  int
		wantOffset int
	}{
		{name: "zero value gets default limit", filter: QueryFilter{}, wantLimit: DefaultLimit, wantOffset: 0},
		{name: "negative offset clamped", filter: QueryFilter{Limit: 10, Offset: -5}, wantLimit: 10, wantOffset: 0},
		{name: "limit above cap clamped", filter: QueryFilter{Limit: 5000, Offset: 20}, wantLimit: DefaultLimit, wantOffset: 20},
		{name: "valid filter unchanged", filter: QueryFilter{Limit: 50, Offset: 100}, wantLimit: 50, wantOffset: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Normalize()
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestNewPaginated(t *testing.T) {
	t.Run("nil results become empty slice", func(t *testing.T) {
		page := NewPaginated[string](QueryFilter{Limit: 10}.Normalize(), nil)
		assert.NotNil(t, page.Results)
		assert.Equal(t, 0, page.Count)
	})

	t.Run("count tracks results", func(t *testing.T) {
		page := NewPaginated(QueryFilter{Limit: 10, Offset: 5}, []int{1, 2, 3})
		assert.Equal(t, 3, page.Count)
		assert.Equal(t, 5, page.Offset)
		assert.Equal(t, 10, page.Limit)
	})
}
