package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"finitefield.org/ofertas-web/internal/catalog"
)

// DefaultPath is the relative location of the feed when nothing else is configured.
const DefaultPath = "data/products.json"

const maxFeedBytes = 8 << 20

// Source is the single read operation the catalog needs.
type Source interface {
	Fetch(ctx context.Context) (catalog.Feed, error)
}

// SourceFunc adapts ordinary functions to Source.
type SourceFunc func(context.Context) (catalog.Feed, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) (catalog.Feed, error) { return f(ctx) }

// LoadFailure is the only failure kind of a feed load: transport error,
// unexpected status, or a malformed payload.
type LoadFailure struct {
	Location string
	Err      error
}

// Error implements the error interface.
func (e *LoadFailure) Error() string {
	return fmt.Sprintf("feed: load %s: %v", e.Location, e.Err)
}

// Unwrap exposes the underlying error.
func (e *LoadFailure) Unwrap() error { return e.Err }

// ErrUnexpectedStatus is wrapped when the remote feed answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client reads the feed from an http(s) URL or a file path.
type Client struct {
	location string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient builds a client for location. An empty location means DefaultPath.
func NewClient(location string, timeout time.Duration, logger *zap.Logger) *Client {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultPath
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		location: location,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Location returns where the client reads from.
func (c *Client) Location() string { return c.location }

// Fetch loads and decodes the feed once. Errors are always *LoadFailure.
func (c *Client) Fetch(ctx context.Context) (catalog.Feed, error) {
	var (
		raw []byte
		err error
	)
	if isRemote(c.location) {
		raw, err = c.fetchRemote(ctx)
	} else {
		raw, err = os.ReadFile(c.location)
	}
	if err != nil {
		return catalog.Feed{}, &LoadFailure{Location: c.location, Err: err}
	}
	feed, skipped, err := Decode(raw, formatFor(c.location))
	if err != nil {
		return catalog.Feed{}, &LoadFailure{Location: c.location, Err: err}
	}
	if skipped > 0 {
		c.logger.Warn("feed: skipped malformed records",
			zap.String("location", c.location),
			zap.Int("skipped", skipped),
		)
	}
	c.logger.Info("feed: loaded",
		zap.String("location", c.location),
		zap.Int("products", len(feed.Products)),
	)
	return feed, nil
}

func (c *Client) fetchRemote(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
}

// Format names a payload encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrNotObject is wrapped when the payload is empty, null, or not a mapping.
var ErrNotObject = errors.New("payload is not an object")

// Decode parses a feed payload. The top level must be an object. Records
// without a title or with a negative price are dropped and counted in skipped.
// A missing product list decodes as an empty one.
func Decode(raw []byte, format Format) (feed catalog.Feed, skipped int, err error) {
	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return catalog.Feed{}, 0, fmt.Errorf("decode yaml: %w", err)
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
			return catalog.Feed{}, 0, fmt.Errorf("decode yaml: %w", ErrNotObject)
		}
		if err := doc.Decode(&feed); err != nil {
			return catalog.Feed{}, 0, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return catalog.Feed{}, 0, fmt.Errorf("decode json: %w", ErrNotObject)
		}
		if err := json.Unmarshal(trimmed, &feed); err != nil {
			return catalog.Feed{}, 0, fmt.Errorf("decode json: %w", err)
		}
	}
	kept := make([]catalog.Product, 0, len(feed.Products))
	for _, p := range feed.Products {
		if !p.Valid() {
			skipped++
			continue
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		kept = append(kept, p)
	}
	feed.Products = kept
	return feed, skipped, nil
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func formatFor(location string) Format {
	p := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
