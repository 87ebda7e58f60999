package main

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"settimohub.it/hub-web/internal/app"
	"settimohub.it/hub-web/internal/catalog"
	"settimohub.it/hub-web/internal/config"
	"settimohub.it/hub-web/internal/content"
	"settimohub.it/hub-web/internal/i18n"
	"settimohub.it/hub-web/internal/links"
	mw "settimohub.it/hub-web/internal/middleware"
	"settimohub.it/hub-web/internal/page"
	"settimohub.it/hub-web/internal/session"
)

// site holds everything the handlers share.
type site struct {
	cfg      config.Config
	logger   *zap.Logger
	bundle   *i18n.Bundle
	source   catalog.Source
	sessions *session.Registry
	pages    *content.Store

	// devMode reparses templates on each request.
	devMode   bool
	tmplCache *template.Template
}

func newSite(cfg config.Config, logger *zap.Logger) (*site, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle, err := i18n.Load(cfg.Site.LocalesDir, cfg.Site.DefaultLang, cfg.Site.Languages)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	s := &site{
		cfg:     cfg,
		logger:  logger,
		bundle:  bundle,
		source:  newSource(cfg.Data),
		pages:   content.NewStore(os.DirFS(cfg.Site.ContentDir), bundle.Fallback(), cfg.Data.CacheTTL),
		devMode: !cfg.Production(),
	}
	if !s.devMode {
		tc, err := parseTemplates(cfg.Site.TemplatesDir, bundle)
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		s.tmplCache = tc
	}
	s.sessions = session.New(s.newController,
		session.WithTTL(cfg.Session.TTL),
		session.WithLogger(logger.Named("session")),
	)
	return s, nil
}

// newSource picks the HTTP source when a URL is configured, the data directory
// otherwise, and caches either for CacheTTL.
func newSource(cfg config.DataConfig) catalog.Source {
	var src catalog.Source
	if cfg.URL != "" {
		src = catalog.NewHTTPSource(cfg.URL, &http.Client{Timeout: cfg.FetchTimeout})
	} else {
		src = catalog.NewFileSource(os.DirFS(cfg.Dir))
	}
	if cfg.CacheTTL > 0 {
		return catalog.NewCachedSource(src, cfg.CacheTTL)
	}
	return src
}

func (s *site) newController(lang string) *app.Controller {
	return app.New(s.source, page.Factory(s.bundle),
		app.WithTranslator(s.bundle),
		app.WithLinks(links.Builder{
			MessagingBase: s.cfg.Links.MessagingBase,
			MapsSearch:    s.cfg.Links.MapsSearch,
		}),
		app.WithLang(lang),
		app.WithLogger(s.logger.Named("app")),
	)
}

// Close stops the session janitor.
func (s *site) Close() {
	s.sessions.Close()
}

func (s *site) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(s.logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(os.DirFS(filepath.Join(s.cfg.Site.PublicDir, "assets"))))
	r.Handle("/assets/*", assets)

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session(mw.SessionOptions{
			SigningKey: s.cfg.Session.SigningKey,
			Secure:     s.cfg.Session.Secure,
			MaxAge:     s.cfg.Session.TTL,
			Logger:     s.logger,
		}))
		r.Use(mw.Locale(s.bundle, s.cfg.Session.Secure))
		r.Use(mw.CSRF(s.cfg.Session.Secure))

		r.Get("/", s.handleHome)
		r.Get("/shop/{id}", s.handleShop)
		r.Get("/info/{slug}", s.handleInfo)

		r.Post("/comune", s.handleMunicipality)
		r.Post("/cerca", s.handleSearch)
		r.Post("/reset", s.handleReset)
		r.Post("/categoria", s.handleCategory)
		r.Post("/categorie/tutte", s.handleAllCategories)
		r.Post("/menu", s.handleMenu)
	})
	return r
}
