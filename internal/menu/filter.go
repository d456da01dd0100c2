package menu

import (
	"strings"

	"github.com/vbonduro/branchadmin/internal/domain"
)

type FilterOptions struct {
	Category      string
	AvailableOnly bool
}

// Filter returns the items matching opts, preserving order. The category
// match is case-insensitive; an empty category matches everything.
func Filter(items []*domain.MenuItem, opts FilterOptions) []*domain.MenuItem {
	category := strings.TrimSpace(opts.Category)
	out := make([]*domain.MenuItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if opts.AvailableOnly && !item.IsAvailable {
			continue
		}
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, item)
	}
	return out
}
