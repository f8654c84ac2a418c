package render

import (
	"html/template"
	"strings"

	"finitefield.org/ofertas-web/internal/affiliate"
	"finitefield.org/ofertas-web/internal/catalog"
	"finitefield.org/ofertas-web/internal/i18n"
)

// Pipeline turns session state into card markup: filter, sort, render, write.
type Pipeline struct {
	links affiliate.Builder
	msgs  *i18n.Bundle
}

// NewPipeline builds a pipeline. A nil bundle uses the embedded default copy.
func NewPipeline(links affiliate.Builder, msgs *i18n.Bundle) *Pipeline {
	if msgs == nil {
		msgs = i18n.Default()
	}
	if links.AmazonTag == "" || links.ShopeeTag == "" {
		links = affiliate.NewBuilder(links.AmazonTag, links.ShopeeTag)
	}
	return &Pipeline{links: links, msgs: msgs}
}

// Links exposes the link builder so other views (e.g. structured data) resolve the same URLs.
func (p *Pipeline) Links() affiliate.Builder { return p.links }

// Messages returns the UI copy used by the pipeline.
func (p *Pipeline) Messages() *i18n.Bundle { return p.msgs }

// Results applies the selection to products without rendering.
func (p *Pipeline) Results(products []catalog.Product, sel catalog.Selection) []catalog.Product {
	return catalog.Sort(catalog.Filter(products, sel.Query, sel.Category), sel.Sort)
}

// Render writes the full card list and the result count into s and returns the
// records it rendered. An empty result is a zero count with no cards.
func (p *Pipeline) Render(products []catalog.Product, sel catalog.Selection, s Surface) []catalog.Product {
	results := p.Results(products, sel)
	s.SetCount(p.msgs.T("results.count", len(results)))
	s.SetResults(p.Markup(results))
	return results
}

// Markup concatenates the cards for products.
func (p *Pipeline) Markup(products []catalog.Product) template.HTML {
	var buf strings.Builder
	for _, prod := range products {
		buf.WriteString(p.Card(prod))
	}
	return template.HTML(buf.String())
}

// Unavailable overwrites the results region with the load failure message.
// The count region is left as it was.
func (p *Pipeline) Unavailable(s Surface) {
	s.SetResults(template.HTML(`<p class="unavailable">` + template.HTMLEscapeString(p.msgs.T("results.unavailable")) + `</p>`))
}
