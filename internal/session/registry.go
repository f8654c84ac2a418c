package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"finitefield.org/ofertas-web/internal/controller"
	"finitefield.org/ofertas-web/internal/feed"
	"finitefield.org/ofertas-web/internal/render"
)

// DefaultMaxSessions bounds the number of live page sessions.
const DefaultMaxSessions = 1024

// Page is one live page session: its controller and the surface it renders
// into. Each page load gets its own Page, so several tabs of one browser never
// share selection state.
type Page struct {
	ID string
	// Owner is the browser session that loaded the page.
	Owner      string
	Controller *controller.Controller
	Surface    *render.Buffer
}

// Registry keeps the most recently used page sessions. An evicted session
// behaves like a page that has to be reloaded.
type Registry struct {
	pages    *lru.Cache[string, *Page]
	source   feed.Source
	pipeline *render.Pipeline
	logger   *zap.Logger
}

// NewRegistry builds a registry loading each new page from source.
func NewRegistry(size int, source feed.Source, pipeline *render.Pipeline, logger *zap.Logger) (*Registry, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := lru.NewWithEvict[string, *Page](size, func(id string, _ *Page) {
		logger.Debug("session: evicted", zap.String("page_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("session: new registry: %w", err)
	}
	return &Registry{pages: pages, source: source, pipeline: pipeline, logger: logger}, nil
}

// NewID returns a fresh identifier.
func NewID() string { return uuid.NewString() }

// Start begins a new page session for the browser session owner and loads
// it. The returned page has a fresh ID and is in Ready or Failed.
func (r *Registry) Start(ctx context.Context, owner string) *Page {
	id := NewID()
	buf := &render.Buffer{}
	ctl := controller.New(r.source, buf,
		controller.WithPipeline(r.pipeline),
		controller.WithLogger(r.logger.With(zap.String("page_id", id), zap.String("session_id", owner))),
	)
	page := &Page{ID: id, Owner: owner, Controller: ctl, Surface: buf}
	r.pages.Add(id, page)
	ctl.Load(ctx)
	return page
}

// Get returns the live page id loaded by owner. A page requested by a
// different browser session is reported as missing.
func (r *Registry) Get(id, owner string) (*Page, bool) {
	if id == "" {
		return nil, false
	}
	page, ok := r.pages.Get(id)
	if !ok || page.Owner != owner {
		return nil, false
	}
	return page, true
}

// Dispatch forwards an input event to the page's listeners. It returns a nil
// page when the session is unknown, and false when it has no listener for input.
func (r *Registry) Dispatch(id, owner, input, value string) (*Page, bool) {
	page, ok := r.Get(id, owner)
	if !ok {
		return nil, false
	}
	if !page.Controller.Events().Dispatch(input, value) {
		return page, false
	}
	return page, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int { return r.pages.Len() }
