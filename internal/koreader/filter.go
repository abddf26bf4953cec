package koreader

import "github.com/mrlokans/koreader-highlights/internal/entities"

// FilterByDate keeps the highlights made on a day within r, in their
// original order.
func FilterByDate(highlights []entities.Highlight, r entities.DateRange) []entities.Highlight {
	var filtered []entities.Highlight
	for _, h := range highlights {
		if r.Contains(h.Datetime) {
			filtered = append(filtered, h)
		}
	}
	return filtered
}
