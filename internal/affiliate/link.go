package affiliate

import (
	"strings"

	"finitefield.org/ofertas-web/internal/catalog"
)

const (
	// DefaultAmazonTag and DefaultShopeeTag are placeholders until real partner ids are configured.
	DefaultAmazonTag = "SEU_TAG_AQUI"
	DefaultShopeeTag = "SUA_TAG_AQUI"

	// NoLink marks a record without any actionable destination.
	NoLink = "#"
)

// Builder derives outbound links for products.
type Builder struct {
	AmazonTag string
	ShopeeTag string
}

// NewBuilder returns a Builder, substituting placeholders for empty tags.
func NewBuilder(amazonTag, shopeeTag string) Builder {
	b := Builder{AmazonTag: strings.TrimSpace(amazonTag), ShopeeTag: strings.TrimSpace(shopeeTag)}
	if b.AmazonTag == "" {
		b.AmazonTag = DefaultAmazonTag
	}
	if b.ShopeeTag == "" {
		b.ShopeeTag = DefaultShopeeTag
	}
	return b
}

// Default uses the placeholder tags.
var Default = NewBuilder("", "")

// Link returns the outbound URL for p using the default builder.
func Link(p catalog.Product) string { return Default.Link(p) }

// Link resolves the first matching rule, in order: explicit affiliate URL,
// Amazon ASIN, Shopee product path, plain URL, then NoLink.
func (b Builder) Link(p catalog.Product) string {
	if p.AffiliateURL != "" {
		return p.AffiliateURL
	}
	seller := strings.ToLower(p.Seller)
	if strings.Contains(seller, "amazon") && p.ASIN != "" {
		return "https://www.amazon.com.br/dp/" + p.ASIN + "?tag=" + b.AmazonTag
	}
	if strings.Contains(seller, "shopee") && p.ProductPath != "" {
		return "https://shopee.com.br/" + strings.TrimLeft(p.ProductPath, "/") + "?affiliate_tag=" + b.ShopeeTag
	}
	if p.URL != "" {
		return p.URL
	}
	return NoLink
}
