package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"finitefield.org/ofertas-web/internal/catalog"
	"finitefield.org/ofertas-web/internal/config"
	"finitefield.org/ofertas-web/internal/feed"
	mw "finitefield.org/ofertas-web/internal/middleware"
	"finitefield.org/ofertas-web/internal/testutil"
)

func ptr(v float64) *float64 { return &v }

func sampleFeed() catalog.Feed {
	return catalog.Feed{
		LastUpdated: "2025-01-15T13:30:00Z",
		Notice:      "Preços podem mudar. **Confira na loja.**<script>alert(1)</script>",
		Products: []catalog.Product{
			{Title: "Fone Bluetooth", Price: 100, OriginalPrice: ptr(150), Discount: ptr(33), Category: "eletronicos", Tags: []string{"audio"}, Seller: "Amazon", ASIN: "B0TEST"},
			{Title: "Air Fryer", Price: 329, Category: "casa", Tags: []string{"cozinha"}},
			{Title: "Fone Infantil", Price: 59.9, Category: "casa", Tags: []string{"audio"}},
		},
	}
}

func staticSource(f catalog.Feed) feed.Source {
	return feed.SourceFunc(func(context.Context) (catalog.Feed, error) { return f, nil })
}

// newTestServer builds the same router as main() against source.
func newTestServer(t *testing.T, source feed.Source) http.Handler {
	t.Helper()
	cfg := config.Config{
		Env:          "local",
		Dev:          true,
		TemplatesDir: "../../templates",
		PublicDir:    "../../public",
		Timezone:     "America/Sao_Paulo",
		Feed:         config.FeedConfig{URL: "test", Timeout: time.Second},
		Session:      config.SessionConfig{SigningKey: "test-key", MaxSessions: 8},
	}
	a, err := newApp(cfg, source, zaptest.NewLogger(t))
	require.NoError(t, err)
	return a.routes()
}

// client replays the session cookie the way a browser would.
type client struct {
	t      *testing.T
	srv    http.Handler
	cookie *http.Cookie
}

func (c *client) get(path string, htmx bool) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == mw.SessionCookieName {
			c.cookie = ck
		}
	}
	return rec
}

// open loads a page and returns its document and page session id.
func (c *client) open(path string) (*goquery.Document, string) {
	c.t.Helper()
	rec := c.get(path, false)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	doc := testutil.ParseHTML(c.t, rec.Body.String())
	var vals map[string]string
	require.NoError(c.t, json.Unmarshal([]byte(doc.Find("form.controls").AttrOr("hx-vals", "")), &vals))
	require.NotEmpty(c.t, vals[pageParam])
	return doc, vals[pageParam]
}

// event sends an htmx control change for page; params is a raw query string.
func (c *client) event(page, input, params string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.get("/events/"+input+"?"+params+"&"+pageParam+"="+url.QueryEscape(page), true)
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).Text())
}

func TestHealthzOK(t *testing.T) {
	srv := newTestServer(t, staticSource(sampleFeed()))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestHomeRendersFullPage(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	rec := c.get("/", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, c.cookie, "session cookie issued")

	doc := testutil.ParseHTML(t, rec.Body.String())
	assert.Equal(t, "pt-BR", doc.Find("html").AttrOr("lang", ""))
	assert.Equal(t, "3 oferta(s) encontrada(s)", text(doc, "#count"))
	assert.Equal(t, "Atualizado: 15/01/2025, 10:30:00", text(doc, "#last-updated"))
	assert.Equal(t, []string{"Fone Bluetooth", "Air Fryer", "Fone Infantil"}, testutil.Texts(doc, "#results article.card h2.title"))

	assert.Equal(t, len(catalog.Categories), doc.Find("#category option").Length())
	assert.Equal(t, catalog.CategoryAll, doc.Find("#category option[selected]").AttrOr("value", ""))
	assert.Equal(t, string(catalog.SortRelevance), doc.Find("#sort option[selected]").AttrOr("value", ""))
	assert.Equal(t, "/events/query", doc.Find("#q").AttrOr("hx-get", ""))

	notice := doc.Find("aside.notice")
	assert.Equal(t, 1, notice.Find("strong").Length())
	assert.Zero(t, notice.Find("script").Length())

	var itemList string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if strings.Contains(s.Text(), `"ItemList"`) {
			itemList = s.Text()
		}
	})
	require.NotEmpty(t, itemList)
	assert.Contains(t, itemList, `"numberOfItems":3`)
	assert.Contains(t, itemList, "https://www.amazon.com.br/dp/B0TEST?tag=SEU_TAG_AQUI")
}

func TestHomeDiscountCard(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	doc := testutil.ParseHTML(t, c.get("/", false).Body.String())
	card := doc.Find("#results article.card").First()
	assert.Equal(t, "R$\u00a0100,00", strings.TrimSpace(card.Find(".price").Text()))
	assert.Equal(t, "R$\u00a0150,00", strings.TrimSpace(card.Find(".original").Text()))
	assert.Equal(t, "-33%", strings.TrimSpace(card.Find(".discount").Text()))
}

func TestEventsUpdateOnlyTheirField(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	_, page := c.open("/")

	rec := c.event(page, "query", "query=FONE")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.String())
	assert.Equal(t, []string{"Fone Bluetooth", "Fone Infantil"}, testutil.Texts(doc, "article.card h2.title"))
	count := doc.Find("#count")
	assert.Equal(t, "true", count.AttrOr("hx-swap-oob", ""))
	assert.Equal(t, "2 oferta(s) encontrada(s)", strings.TrimSpace(count.Text()))

	rec = c.event(page, "category", "value=casa")
	require.Equal(t, http.StatusOK, rec.Code)
	doc = testutil.ParseHTML(t, rec.Body.String())
	assert.Equal(t, []string{"Fone Infantil"}, testutil.Texts(doc, "article.card h2.title"))

	rec = c.event(page, "category", "value=todos")
	doc = testutil.ParseHTML(t, rec.Body.String())
	assert.Equal(t, []string{"Fone Bluetooth", "Fone Infantil"}, testutil.Texts(doc, "article.card h2.title"))
}

func TestTabsKeepTheirOwnSelection(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	_, tabA := c.open("/")
	docB, tabB := c.open("/?category=casa")
	require.NotEqual(t, tabA, tabB)
	assert.Equal(t, "casa", docB.Find("#category option[selected]").AttrOr("value", ""))

	doc := testutil.ParseHTML(t, c.event(tabA, "query", "value=fone").Body.String())
	assert.Equal(t, []string{"Fone Bluetooth", "Fone Infantil"}, testutil.Texts(doc, "article.card h2.title"))
	assert.Equal(t, "2 oferta(s) encontrada(s)", text(doc, "#count"))

	doc = testutil.ParseHTML(t, c.event(tabB, "sort", "value=price_asc").Body.String())
	assert.Equal(t, []string{"Fone Infantil", "Air Fryer"}, testutil.Texts(doc, "article.card h2.title"))

	// a page id replayed from another browser session is not honoured
	other := &client{t: t, srv: c.srv}
	other.open("/")
	rec := other.event(tabA, "query", "value=air")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	doc = testutil.ParseHTML(t, c.event(tabA, "sort", "value=relevance").Body.String())
	assert.Equal(t, []string{"Fone Bluetooth", "Fone Infantil"}, testutil.Texts(doc, "article.card h2.title"))
}

func TestEventsSort(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	_, page := c.open("/")

	doc := testutil.ParseHTML(t, c.event(page, "sort", "value=price_asc").Body.String())
	assert.Equal(t, []string{"Fone Infantil", "Fone Bluetooth", "Air Fryer"}, testutil.Texts(doc, "article.card h2.title"))

	doc = testutil.ParseHTML(t, c.event(page, "sort", "value=discount_desc").Body.String())
	assert.Equal(t, []string{"Fone Bluetooth", "Air Fryer", "Fone Infantil"}, testutil.Texts(doc, "article.card h2.title"))
}

func TestEventsEmptyResult(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	_, page := c.open("/")
	doc := testutil.ParseHTML(t, c.event(page, "query", "value=geladeira").Body.String())
	assert.Equal(t, 0, doc.Find("article.card").Length())
	assert.Equal(t, "0 oferta(s) encontrada(s)", text(doc, "#count"))
}

func TestHomeAppliesQueryParameters(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	doc, _ := c.open("/?category=casa&sort=price_desc")
	assert.Equal(t, []string{"Air Fryer", "Fone Infantil"}, testutil.Texts(doc, "#results article.card h2.title"))
	assert.Equal(t, "casa", doc.Find("#category option[selected]").AttrOr("value", ""))
	assert.Equal(t, "price_desc", doc.Find("#sort option[selected]").AttrOr("value", ""))
}

func TestHomeRedisplaysQueryAsTyped(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	doc, _ := c.open("/?query=Fone")
	assert.Equal(t, "Fone", doc.Find("#q").AttrOr("value", ""))
	assert.Equal(t, []string{"Fone Bluetooth", "Fone Infantil"}, testutil.Texts(doc, "#results article.card h2.title"))
}

func TestHomeEscapesFeedText(t *testing.T) {
	f := catalog.Feed{Products: []catalog.Product{{Title: "<script>alert('x')</script>", Price: 10}}}
	c := &client{t: t, srv: newTestServer(t, staticSource(f))}
	rec := c.get("/", false)
	body := rec.Body.String()
	assert.NotContains(t, body, "<script>alert(")
	doc := testutil.ParseHTML(t, body)
	assert.Equal(t, "<script>alert('x')</script>", text(doc, "#results h2.title"))
	assert.Empty(t, text(doc, "#last-updated"))
}

func TestFailedLoadShowsFallbackAndIgnoresEvents(t *testing.T) {
	failing := feed.SourceFunc(func(context.Context) (catalog.Feed, error) {
		return catalog.Feed{}, &feed.LoadFailure{Location: "test", Err: errors.New("boom")}
	})
	c := &client{t: t, srv: newTestServer(t, failing)}
	doc, page := c.open("/")
	assert.Equal(t, "Não foi possível carregar as ofertas agora.", text(doc, "#results p.unavailable"))
	assert.Empty(t, text(doc, "#count"))

	rec := c.event(page, "query", "value=fone")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("HX-Refresh"))
}

func TestEventWithoutPageAsksForReload(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	c.open("/")

	for _, path := range []string{"/events/query?value=fone", "/events/query?value=fone&page=gone"} {
		rec := c.get(path, true)
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
		assert.Equal(t, "true", rec.Header().Get("HX-Refresh"), path)
	}
}

func TestUnknownEventInput(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, staticSource(sampleFeed()))}
	_, page := c.open("/")
	rec := c.event(page, "price", "value=1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHomeWithFileFeed(t *testing.T) {
	source := feed.NewClient("../../data/products.json", time.Second, zaptest.NewLogger(t))
	c := &client{t: t, srv: newTestServer(t, source)}
	doc := testutil.ParseHTML(t, c.get("/", false).Body.String())
	assert.Equal(t, 6, doc.Find("#results article.card").Length())
	assert.Equal(t, "6 oferta(s) encontrada(s)", text(doc, "#count"))
	assert.Equal(t, "R$\u00a01.234,50", strings.TrimSpace(doc.Find("#results article.card .price").Last().Text()))
}

func TestAssetsServedWithETag(t *testing.T) {
	srv := newTestServer(t, staticSource(sampleFeed()))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}
