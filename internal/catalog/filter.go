package catalog

import "strings"

// NormalizeQuery trims and lowercases raw search input.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Filter returns the products matching query and category, in input order.
// query is expected to be normalized already; an empty query matches everything.
func Filter(products []Product, query, category string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if matchesQuery(p, query) && matchesCategory(p, category) {
			out = append(out, p)
		}
	}
	return out
}

func matchesQuery(p Product, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func matchesCategory(p Product, category string) bool {
	return IsCatchAll(category) || p.Category == category
}
