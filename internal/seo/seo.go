package seo

// OpenGraph carries og:* tags for the page head.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	Locale      string
}

// Meta is the head metadata of a rendered page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
}

// NewMeta fills the OpenGraph fields from title and description.
func NewMeta(title, description, canonical string) Meta {
	return Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Type:        "website",
			Locale:      "pt_BR",
		},
	}
}
