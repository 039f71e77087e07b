package inventory

import (
	"strings"

	"golang.org/x/text/cases"
)

// AllCategories is the category filter value that matches everything.
const AllCategories = "All"

// Filter narrows Search results.
type Filter struct {
	// Term matches name or SKU, case-insensitively.
	Term     string
	Category string
}

// Search returns items whose name or SKU contains the term and whose
// category matches, in insertion order.
func (s *Store) Search(f Filter) []Item {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(f.Term))
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if f.Category != "" && f.Category != AllCategories && item.Category != f.Category {
			continue
		}
		if term != "" &&
			!strings.Contains(fold.String(item.Name), term) &&
			!strings.Contains(fold.String(item.SKU), term) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{}, len(s.items))
	out := []string{}
	for _, item := range s.items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
