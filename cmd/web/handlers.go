package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/ofertas-web/internal/controller"
	mw "finitefield.org/ofertas-web/internal/middleware"
)

// pageParam carries the page session id on every event request.
const pageParam = "page"

var inputs = []string{controller.InputQuery, controller.InputCategory, controller.InputSort}

func knownInput(name string) bool {
	for _, in := range inputs {
		if in == name {
			return true
		}
	}
	return false
}

// homeHandler starts a fresh page session and renders the full page. Query
// parameters named after an input are applied on top of the initial render so
// the no-JS form and shared links work.
func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	sd := mw.GetSession(r)
	page := a.registry.Start(r.Context(), sd.ID)

	q := r.URL.Query()
	for _, in := range inputs {
		if q.Has(in) {
			page.Controller.Events().Dispatch(in, q.Get(in))
		}
	}

	vm := a.buildHomeView(r, page.ID, page.Controller.State(), page.Surface.Snapshot())
	a.render(w, "base", vm)
}

// eventHandler delivers one control change to the listener of the page named
// by the page parameter and answers with the re-rendered results. Pages that
// are gone, or belong to another browser session, ask htmx to reload; pages
// without listeners get no content.
func (a *app) eventHandler(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "input")
	if !knownInput(input) {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	value := q.Get("value")
	if !q.Has("value") {
		value = q.Get(input)
	}

	sd := mw.GetSession(r)
	page, ok := a.registry.Dispatch(q.Get(pageParam), sd.ID, input, value)
	if page == nil {
		a.logger.Debug("event for unknown page", zap.String("input", input))
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.render(w, "fragment", fragmentView(page.Surface.Snapshot()))
}
