package menu

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/vbonduro/branchadmin/internal/domain"
)

// imageKeys lists the image field aliases in priority order.
var imageKeys = []string{"image_url", "imageUrl", "image", "photo"}

// Normalize maps an untyped menu record from the API onto the canonical
// MenuItem. It never fails and never mutates raw.
//
// A nil record is passed through as nil rather than normalized; callers must
// handle it.
func Normalize(raw map[string]any) *domain.MenuItem {
	if raw == nil {
		return nil
	}

	item := &domain.MenuItem{
		ID:          toString(raw["id"]),
		Name:        toString(raw["name"]),
		Price:       toNumber(raw["price"]),
		Description: toString(raw["description"]),
		Category:    toString(raw["category"]),
		IsAvailable: true,
		Ingredients: []any{},
	}

	for _, key := range imageKeys {
		if s := toString(raw[key]); s != "" {
			item.ImageURL = s
			break
		}
	}

	if v, ok := firstPresent(raw, "is_available", "isAvailable"); ok {
		item.IsAvailable = toBool(v)
	}

	if v, ok := firstPresent(raw, "branch_id", "branchId"); ok {
		branchID := toString(v)
		item.BranchID = &branchID
	}

	if list, ok := raw["ingredients"].([]any); ok {
		item.Ingredients = list
	}

	return item
}

// NormalizeAny normalizes a decoded JSON value. Objects go through Normalize,
// null stays nil, and any other value is treated as an empty record.
func NormalizeAny(v any) *domain.MenuItem {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return Normalize(t)
	default:
		return Normalize(map[string]any{})
	}
}

// firstPresent returns the first non-null value among keys.
func firstPresent(raw map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func toNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return t != ""
	default:
		return v != nil
	}
}
