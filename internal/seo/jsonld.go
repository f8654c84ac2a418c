package seo

import (
	"encoding/json"
	"strconv"

	"finitefield.org/ofertas-web/internal/catalog"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context":   "https://schema.org",
		"@type":      "WebSite",
		"name":       name,
		"inLanguage": "pt-BR",
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// ItemList describes products in display order as schema.org Product entries.
// link resolves the outbound URL of each product; entries whose link is "#"
// omit url.
func ItemList(products []catalog.Product, link func(catalog.Product) string) map[string]any {
	el := make([]map[string]any, 0, len(products))
	for i, p := range products {
		item := map[string]any{
			"@type": "Product",
			"name":  p.Title,
			"offers": map[string]any{
				"@type":         "Offer",
				"price":         strconv.FormatFloat(p.Price, 'f', 2, 64),
				"priceCurrency": "BRL",
			},
		}
		if p.Image != "" {
			item["image"] = p.Image
		}
		if p.Seller != "" {
			item["brand"] = map[string]any{"@type": "Brand", "name": p.Seller}
		}
		if link != nil {
			if u := link(p); u != "" && u != "#" {
				item["url"] = u
				item["offers"].(map[string]any)["url"] = u
			}
		}
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"numberOfItems":   len(products),
		"itemListElement": el,
	}
}
