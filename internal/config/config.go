package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

const (
	envPrefix   = "OFERTAS_"
	defaultPort = "8080"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Feed      FeedConfig      `envPrefix:"FEED_"`
	Affiliate AffiliateConfig
	Session   SessionConfig

	// Env is "local", "staging" or "prod"; prod marks cookies Secure.
	Env          string `env:"ENV" envDefault:"local"`
	Dev          bool   `env:"DEV"`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"templates"`
	PublicDir    string `env:"PUBLIC_DIR" envDefault:"public"`
	// LocalesDir optionally overrides the embedded UI copy with <dir>/locales/pt-BR.json.
	LocalesDir string `env:"LOCALES_DIR"`
	Timezone   string `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr            string        `env:"ADDR"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// FeedConfig locates the product feed.
type FeedConfig struct {
	URL     string        `env:"URL" envDefault:"data/products.json"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// AffiliateConfig holds partner ids substituted into constructed links.
type AffiliateConfig struct {
	AmazonTag string `env:"AMAZON_TAG"`
	ShopeeTag string `env:"SHOPEE_TAG"`
}

// SessionConfig controls browser session handling.
type SessionConfig struct {
	SigningKey  string `env:"SESSION_SIGNING_KEY"`
	MaxSessions int    `env:"MAX_SESSIONS" envDefault:"1024"`
}

// SecureCookies reports whether cookies must carry the Secure flag.
func (c Config) SecureCookies() bool {
	return strings.EqualFold(c.Env, "prod")
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvMap injects explicit values; they take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load parses OFERTAS_* variables and validates the result. When no listen
// address is configured, Cloud Run's PORT is honoured before falling back to 8080.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	values := map[string]string{}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
				values[k] = v
			}
		}
	}
	for k, v := range options.envMap {
		values[k] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix, Environment: values}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		port := strings.TrimSpace(values["PORT"])
		if port == "" {
			port = defaultPort
		}
		cfg.Server.Addr = ":" + port
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	var fields []string
	if c.Feed.Timeout <= 0 {
		fields = append(fields, envPrefix+"FEED_TIMEOUT")
	}
	if strings.TrimSpace(c.Feed.URL) == "" {
		fields = append(fields, envPrefix+"FEED_URL")
	}
	if c.Session.MaxSessions <= 0 {
		fields = append(fields, envPrefix+"MAX_SESSIONS")
	}
	if c.Server.ShutdownTimeout <= 0 {
		fields = append(fields, envPrefix+"SHUTDOWN_TIMEOUT")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || strings.TrimSpace(c.Timezone) == "" {
		fields = append(fields, envPrefix+"TIMEZONE")
	}
	if strings.EqualFold(c.Env, "prod") && strings.TrimSpace(c.Session.SigningKey) == "" {
		fields = append(fields, envPrefix+"SESSION_SIGNING_KEY")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}
