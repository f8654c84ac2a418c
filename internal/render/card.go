package render

import (
	"net/url"
	"strconv"
	"strings"

	"finitefield.org/ofertas-web/internal/affiliate"
	"finitefield.org/ofertas-web/internal/catalog"
	"finitefield.org/ofertas-web/internal/format"
)

// Card renders the markup for one product. Every feed-supplied string is escaped.
func (p *Pipeline) Card(prod catalog.Product) string {
	esc := format.EscapeHTML
	title := esc(prod.Title)

	seller := prod.Seller
	if strings.TrimSpace(seller) == "" {
		seller = p.msgs.T("card.seller.default")
	}
	shipping := prod.Shipping
	if strings.TrimSpace(shipping) == "" {
		shipping = p.msgs.T("card.shipping.default")
	}

	var buf strings.Builder
	buf.WriteString(`<article class="card">`)
	buf.WriteString(`<img src="` + esc(safeURL(prod.Image, "")) + `" alt="` + title + `" loading="lazy" />`)
	buf.WriteString(`<div class="content">`)
	buf.WriteString(`<h2 class="title">` + title + `</h2>`)
	buf.WriteString(`<div class="seller">` + esc(seller) + `</div>`)

	buf.WriteString(`<div class="price-row">`)
	buf.WriteString(`<div class="price">` + format.Currency(prod.Price) + `</div>`)
	if prod.HasDiscountContext() {
		buf.WriteString(`<div class="original">` + format.Currency(*prod.OriginalPrice) + `</div>`)
	}
	if d := prod.DiscountOrZero(); d > 0 {
		buf.WriteString(`<span class="discount">-` + strconv.FormatFloat(d, 'f', -1, 64) + `%</span>`)
	}
	buf.WriteString(`</div>`)

	buf.WriteString(`<div class="tags">`)
	for _, tag := range prod.Tags {
		buf.WriteString(`<span class="tag">` + esc(tag) + `</span>`)
	}
	buf.WriteString(`</div>`)

	buf.WriteString(`<div class="actions">`)
	href := safeURL(p.links.Link(prod), affiliate.NoLink)
	buf.WriteString(`<a class="button primary" href="` + esc(href) + `" target="_blank" rel="nofollow sponsored noopener noreferrer">` + esc(p.msgs.T("card.cta")) + `</a>`)
	buf.WriteString(`<span class="badge">` + esc(p.msgs.T("card.shipping", shipping)) + `</span>`)
	buf.WriteString(`</div>`)

	buf.WriteString(`</div></article>`)
	return buf.String()
}

// safeURL keeps http(s), relative and fragment URLs; anything else (e.g.
// javascript:) becomes fallback.
func safeURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return raw
	default:
		return fallback
	}
}
