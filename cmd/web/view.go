package main

import (
	"html/template"
	"net/http"

	"finitefield.org/ofertas-web/internal/catalog"
	"finitefield.org/ofertas-web/internal/controller"
	"finitefield.org/ofertas-web/internal/i18n"
	"finitefield.org/ofertas-web/internal/render"
	"finitefield.org/ofertas-web/internal/seo"
)

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

// HomeView is the data for the full page.
type HomeView struct {
	Lang string
	// PageID ties the page's event requests to its own session.
	PageID      string
	Meta        seo.Meta
	JSONLD      []template.JS
	Query       string
	Categories  []selectOption
	Sorts       []selectOption
	Count       string
	LastUpdated string
	Results     template.HTML
	Notice      template.HTML
	Ready       bool

	msgs *i18n.Bundle
}

// T looks up UI copy for the templates.
func (v HomeView) T(key string) string { return v.msgs.T(key) }

// FragmentView is the data for an htmx results swap.
type FragmentView struct {
	Count       string
	LastUpdated string
	Results     template.HTML
}

func (a *app) buildHomeView(r *http.Request, pageID string, state controller.State, snap render.Snapshot) HomeView {
	msgs := a.messages
	v := HomeView{
		Lang:        msgs.Lang(),
		PageID:      pageID,
		Meta:        seo.NewMeta(msgs.T("site.title"), msgs.T("site.description"), canonicalURL(r)),
		Query:       state.QueryText,
		Categories:  categoryOptions(state.Selection.Category),
		Sorts:       sortOptions(state.Selection.Sort),
		Count:       snap.Count,
		LastUpdated: snap.LastUpdated,
		Results:     snap.Results,
		Notice:      state.Notice,
		Ready:       state.Phase == controller.Ready,
		msgs:        msgs,
	}
	// json.Marshal escapes <, > and & so the payload cannot close the script element
	v.JSONLD = append(v.JSONLD, template.JS(seo.JSON(seo.WebSite(v.Meta.Title, v.Meta.Canonical))))
	switch state.Phase {
	case controller.Ready:
		v.JSONLD = append(v.JSONLD, template.JS(seo.JSON(seo.ItemList(state.Results, a.pipeline.Links().Link))))
	case controller.Loading:
		v.Results = template.HTML(`<p class="loading">` + template.HTMLEscapeString(msgs.T("results.loading")) + `</p>`)
	}
	return v
}

func fragmentView(snap render.Snapshot) FragmentView {
	return FragmentView{Count: snap.Count, LastUpdated: snap.LastUpdated, Results: snap.Results}
}

func categoryOptions(selected string) []selectOption {
	if catalog.IsCatchAll(selected) {
		selected = catalog.CategoryAll
	}
	out := make([]selectOption, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		out = append(out, selectOption{Value: c.Value, Label: c.Label, Selected: c.Value == selected})
	}
	return out
}

func sortOptions(selected catalog.SortKey) []selectOption {
	out := make([]selectOption, 0, len(catalog.SortOptions))
	for _, o := range catalog.SortOptions {
		out = append(out, selectOption{Value: string(o.Key), Label: o.Label, Selected: o.Key == selected})
	}
	return out
}

func canonicalURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host + "/"
}
