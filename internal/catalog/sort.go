package catalog

import (
	"slices"
	"sort"
)

// SortKey selects the result ordering.
type SortKey string

const (
	SortRelevance    SortKey = "relevance"
	SortPriceAsc     SortKey = "price_asc"
	SortPriceDesc    SortKey = "price_desc"
	SortDiscountDesc SortKey = "discount_desc"
)

// SortOption pairs a key with its label for the sort control.
type SortOption struct {
	Key   SortKey
	Label string
}

// SortOptions lists the keys offered in the UI, default first.
var SortOptions = []SortOption{
	{Key: SortRelevance, Label: "Relevância"},
	{Key: SortPriceAsc, Label: "Menor preço"},
	{Key: SortPriceDesc, Label: "Maior preço"},
	{Key: SortDiscountDesc, Label: "Maior desconto"},
}

// Sort returns a reordered copy of products. Relevance and unknown keys keep
// feed order; ties keep input order.
func Sort(products []Product, key SortKey) []Product {
	out := slices.Clone(products)
	if out == nil {
		out = []Product{}
	}
	var less func(i, j int) bool
	switch key {
	case SortPriceAsc:
		less = func(i, j int) bool { return out[i].Price < out[j].Price }
	case SortPriceDesc:
		less = func(i, j int) bool { return out[i].Price > out[j].Price }
	case SortDiscountDesc:
		less = func(i, j int) bool { return out[i].DiscountOrZero() > out[j].DiscountOrZero() }
	default:
		return out
	}
	sort.SliceStable(out, less)
	return out
}
