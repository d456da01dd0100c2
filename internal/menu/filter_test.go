package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vbonduro/branchadmin/internal/domain"
)

func TestFilter(t *testing.T) {
	items := []*domain.MenuItem{
		{ID: "1", Category: "Hot", IsAvailable: true},
		{ID: "2", Category: "iced", IsAvailable: true},
		{ID: "3", Category: "hot", IsAvailable: false},
		nil,
	}

	ids := func(list []*domain.MenuItem) []string {
		out := []string{}
		for _, item := range list {
			out = append(out, item.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(items, FilterOptions{})))
	assert.Equal(t, []string{"1", "3"}, ids(Filter(items, FilterOptions{Category: "HOT"})))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(items, FilterOptions{AvailableOnly: true})))
	assert.Equal(t, []string{"1"}, ids(Filter(items, FilterOptions{Category: " hot ", AvailableOnly: true})))
	assert.Empty(t, Filter(items, FilterOptions{Category: "specialty"}))
}
