package catalog

import (
	"sort"
	"strings"

	"localmart/internal/backend"
	"localmart/internal/models"
)

// sortSpec maps a listing sort name to the backend sort order. Unknown names
// fall back to newest-first.
func sortSpec(sortBy string) backend.Sort {
	switch sortBy {
	case "oldest":
		return backend.Sort{Field: "createdAt"}
	case "price-low":
		return backend.Sort{Field: "price"}
	case "price-high":
		return backend.Sort{Field: "price", Desc: true}
	case "alphabetical":
		return backend.Sort{Field: "name"}
	default:
		return backend.Sort{Field: "createdAt", Desc: true}
	}
}

// sortItems orders a fetched slice in place by the same criteria the backend
// sorts on, keeping locally filtered results consistent.
func sortItems(items []models.Item, sortBy string) {
	switch sortBy {
	case "oldest":
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	case "price-low":
		sort.SliceStable(items, func(i, j int) bool { return priceOf(items[i]) < priceOf(items[j]) })
	case "price-high":
		sort.SliceStable(items, func(i, j int) bool { return priceOf(items[i]) > priceOf(items[j]) })
	case "alphabetical":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	default: // newest
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	}
}

// filterLocal applies text search and price-range filtering to a fetched
// slice. These criteria are not expressible as backend equality filters.
func filterLocal(items []models.Item, search string, minPrice, maxPrice *float64) []models.Item {
	if search == "" && minPrice == nil && maxPrice == nil {
		return items
	}

	term := strings.ToLower(search)
	out := items[:0:0]
	for _, item := range items {
		if term != "" &&
			!strings.Contains(strings.ToLower(item.Name), term) &&
			!strings.Contains(strings.ToLower(item.Description), term) {
			continue
		}
		if minPrice != nil && (item.Price == nil || *item.Price < *minPrice) {
			continue
		}
		if maxPrice != nil && (item.Price == nil || *item.Price > *maxPrice) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func priceOf(item models.Item) float64 {
	if item.Price == nil {
		return 0
	}
	return *item.Price
}
