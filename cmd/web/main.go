package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/ofertas-web/internal/affiliate"
	"finitefield.org/ofertas-web/internal/config"
	"finitefield.org/ofertas-web/internal/feed"
	"finitefield.org/ofertas-web/internal/format"
	"finitefield.org/ofertas-web/internal/i18n"
	mw "finitefield.org/ofertas-web/internal/middleware"
	"finitefield.org/ofertas-web/internal/observability"
	"finitefield.org/ofertas-web/internal/render"
	"finitefield.org/ofertas-web/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	flag.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "HTTP listen address")
	flag.StringVar(&cfg.TemplatesDir, "templates", cfg.TemplatesDir, "templates directory")
	flag.StringVar(&cfg.PublicDir, "public", cfg.PublicDir, "public assets directory")
	flag.StringVar(&cfg.Feed.URL, "feed", cfg.Feed.URL, "product feed URL or path")
	flag.Parse()

	logger, err := observability.NewLogger(os.Getenv("LOG_LEVEL"), cfg.Dev)
	if err != nil {
		zap.NewExample().Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	source := feed.NewClient(cfg.Feed.URL, cfg.Feed.Timeout, logger.Named("feed"))
	a, err := newApp(cfg, source, logger)
	if err != nil {
		logger.Fatal("init app", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.serve(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// app carries the process-wide dependencies shared by every handler.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	messages  *i18n.Bundle
	pipeline  *render.Pipeline
	registry  *session.Registry
	sessions  *mw.Sessions
	templates *templateSet
}

func newApp(cfg config.Config, source feed.Source, logger *zap.Logger) (*app, error) {
	if err := format.SetLocation(cfg.Timezone); err != nil {
		return nil, err
	}
	messages := i18n.Default()
	if cfg.LocalesDir != "" {
		b, err := i18n.Load(os.DirFS(cfg.LocalesDir), i18n.Lang)
		if err != nil {
			return nil, err
		}
		messages = b
	}
	pipeline := render.NewPipeline(affiliate.NewBuilder(cfg.Affiliate.AmazonTag, cfg.Affiliate.ShopeeTag), messages)
	registry, err := session.NewRegistry(cfg.Session.MaxSessions, source, pipeline, logger.Named("session"))
	if err != nil {
		return nil, err
	}
	templates := newTemplateSet(cfg.TemplatesDir, cfg.Dev)
	if !cfg.Dev {
		// parse once in production so a broken template fails at startup
		if err := templates.load(); err != nil {
			return nil, err
		}
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		messages:  messages,
		pipeline:  pipeline,
		registry:  registry,
		sessions:  mw.NewSessions([]byte(cfg.Session.SigningKey), cfg.SecureCookies()),
		templates: templates,
	}, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(a.sessions.Middleware)
	r.Use(mw.Logger(a.logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.Assets(os.DirFS(filepath.Join(a.cfg.PublicDir, "assets"))))
	r.Handle("/assets/*", assets)

	r.Get("/", a.homeHandler)
	r.Get("/events/{input}", a.eventHandler)
	return r
}

func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev", a.cfg.Dev),
			zap.String("feed", a.cfg.Feed.URL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down", zap.Int("sessions", a.registry.Len()))
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
