package controller

import (
	"context"
	"html/template"
	"strings"
	"sync"

	"go.uber.org/zap"

	"finitefield.org/ofertas-web/internal/affiliate"
	"finitefield.org/ofertas-web/internal/catalog"
	"finitefield.org/ofertas-web/internal/feed"
	"finitefield.org/ofertas-web/internal/format"
	"finitefield.org/ofertas-web/internal/observability"
	"finitefield.org/ofertas-web/internal/render"
)

// Phase is the load state of a controller.
type Phase int

const (
	Loading Phase = iota
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Controller owns one page session: the loaded products, the selectors, and
// the surface they are rendered into. Handlers are serialized by mu.
type Controller struct {
	mu       sync.Mutex
	source   feed.Source
	surface  render.Surface
	pipeline *render.Pipeline
	events   *Events
	logger   *zap.Logger

	phase    Phase
	products []catalog.Product
	sel      catalog.Selection
	// queryText is the query as typed; sel.Query is its normalized form.
	queryText string
	results   []catalog.Product
	notice    template.HTML
	err       error
}

// Option customises a Controller.
type Option func(*Controller)

// WithPipeline overrides the render pipeline.
func WithPipeline(p *render.Pipeline) Option {
	return func(c *Controller) {
		if p != nil {
			c.pipeline = p
		}
	}
}

// WithEvents attaches listeners to an externally owned registry.
func WithEvents(e *Events) Option {
	return func(c *Controller) {
		if e != nil {
			c.events = e
		}
	}
}

// WithLogger sets the logger used for load outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a controller in the Loading phase.
func New(source feed.Source, surface render.Surface, opts ...Option) *Controller {
	c := &Controller{
		source:  source,
		surface: surface,
		sel:     catalog.DefaultSelection(),
		phase:   Loading,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pipeline == nil {
		c.pipeline = render.NewPipeline(affiliate.Default, nil)
	}
	if c.events == nil {
		c.events = NewEvents()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Load fetches the feed once and moves to Ready or Failed. A failure never
// escapes: the results region shows the fallback message instead. Calling
// Load again after the first call is a no-op.
func (c *Controller) Load(ctx context.Context) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Loading {
		return c.phase
	}

	payload, err := c.source.Fetch(ctx)
	if err != nil {
		c.err = err
		c.phase = Failed
		c.pipeline.Unavailable(c.surface)
		c.logger.Warn("catalog: load failed", zap.Error(err))
		return c.phase
	}

	c.products = payload.Products
	if c.products == nil {
		c.products = []catalog.Product{}
	}
	msgs := c.pipeline.Messages()
	if raw := strings.TrimSpace(payload.LastUpdated); raw != "" {
		c.surface.SetLastUpdated(msgs.T("updated.prefix", format.DateOr(raw, raw)))
	} else {
		c.surface.SetLastUpdated("")
	}
	if notice, err := render.Notice(payload.Notice); err != nil {
		c.logger.Warn("catalog: notice skipped", zap.Error(err))
	} else {
		c.notice = notice
	}

	c.events.Listen(InputQuery, c.onQuery)
	c.events.Listen(InputCategory, c.onCategory)
	c.events.Listen(InputSort, c.onSort)

	c.phase = Ready
	c.renderLocked()
	c.logger.Info("catalog: ready", zap.Int("products", len(c.products)))
	return c.phase
}

func (c *Controller) onQuery(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queryText = value
	c.sel.Query = catalog.NormalizeQuery(value)
	c.renderLocked()
}

func (c *Controller) onCategory(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Category = strings.TrimSpace(value)
	c.renderLocked()
}

func (c *Controller) onSort(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Sort = catalog.SortKey(strings.TrimSpace(value))
	c.renderLocked()
}

func (c *Controller) renderLocked() {
	c.results = c.pipeline.Render(c.products, c.sel, c.surface)
	c.logger.Debug("catalog: rendered",
		zap.String("query", observability.SanitizeValue(c.sel.Query)),
		zap.String("category", observability.SanitizeValue(c.sel.Category)),
		zap.String("sort", observability.SanitizeValue(string(c.sel.Sort))),
		zap.Int("results", len(c.results)),
	)
}

// Events returns the registry the controller attaches its listeners to.
func (c *Controller) Events() *Events { return c.events }

// Pipeline returns the render pipeline in use.
func (c *Controller) Pipeline() *render.Pipeline { return c.pipeline }

// State is a consistent copy of the controller's observable state.
type State struct {
	Phase     Phase
	Selection catalog.Selection
	// QueryText is the query as the user typed it, for redisplay.
	QueryText string
	// Results are the records of the last render, in display order.
	Results []catalog.Product
	Total   int
	Notice  template.HTML
	Err     error
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]catalog.Product, len(c.results))
	copy(results, c.results)
	return State{
		Phase:     c.phase,
		Selection: c.sel,
		QueryText: c.queryText,
		Results:   results,
		Total:     len(c.products),
		Notice:    c.notice,
		Err:       c.err,
	}
}

// Phase returns the current load state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}
