package catalog

import "strings"

// Product is one offer from the feed. Optional numeric fields are pointers so
// absence is distinguishable from zero.
type Product struct {
	Title         string   `json:"title" yaml:"title"`
	Price         float64  `json:"price" yaml:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Discount      *float64 `json:"discount,omitempty" yaml:"discount,omitempty"`
	Category      string   `json:"category" yaml:"category"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Seller        string   `json:"seller,omitempty" yaml:"seller,omitempty"`
	Image         string   `json:"image" yaml:"image"`
	Shipping      string   `json:"shipping,omitempty" yaml:"shipping,omitempty"`
	AffiliateURL  string   `json:"affiliateUrl,omitempty" yaml:"affiliateUrl,omitempty"`
	ASIN          string   `json:"asin,omitempty" yaml:"asin,omitempty"`
	ProductPath   string   `json:"productPath,omitempty" yaml:"productPath,omitempty"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// Feed is the payload served at the feed path.
type Feed struct {
	Products    []Product `json:"products" yaml:"products"`
	LastUpdated string    `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	// Notice is optional markdown shown above the results, e.g. an affiliate disclosure.
	Notice string `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// DiscountOrZero returns the discount percentage, treating absence as zero.
func (p Product) DiscountOrZero() float64 {
	if p.Discount == nil {
		return 0
	}
	return *p.Discount
}

// HasDiscountContext reports whether an original price above the current one is present.
func (p Product) HasDiscountContext() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// Valid reports whether the record can be rendered at all.
func (p Product) Valid() bool {
	return strings.TrimSpace(p.Title) != "" && p.Price >= 0
}

// Selection holds the user-controlled selectors of a browsing session.
type Selection struct {
	Query    string
	Category string
	Sort     SortKey
}

// DefaultSelection is the state of a freshly loaded page.
func DefaultSelection() Selection {
	return Selection{Category: CategoryAll, Sort: SortRelevance}
}
