// Package web serves the GameVault HTML pages, the JSON API and the change
// notification socket.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/gamevault/internal/auth"
	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/internal/store"
	"github.com/mesh-intelligence/gamevault/pkg/schema"
)

// DefaultAddr is the listen address when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:8080"

const shutdownTimeout = 5 * time.Second

// Config wires a Server to its collaborators. Store, Auth and Bundle are
// required.
type Config struct {
	Addr   string
	Store  *store.Store
	Auth   *auth.Service
	Bundle *i18n.Bundle
	// Locale is tried before the Accept-Language header.
	Locale string
	Logger *slog.Logger
	// Registry receives the HTTP metrics; nil creates a private registry.
	Registry *prometheus.Registry
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

// Server is the HTTP surface of GameVault.
type Server struct {
	addr         string
	store        *store.Store
	auth         *auth.Service
	bundle       *i18n.Bundle
	locale       string
	logger       *slog.Logger
	registry     *prometheus.Registry
	metrics      *httpMetrics
	secureCookie bool
	fields       schema.Schema
	pages        map[string]*template.Template
	hub          *hub
	unsubscribe  func()
	router       chi.Router
}

// NewServer builds the router and subscribes the notification hub to the
// store.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil || cfg.Auth == nil || cfg.Bundle == nil {
		return nil, errors.New("web: store, auth and bundle are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:         cfg.Addr,
		store:        cfg.Store,
		auth:         cfg.Auth,
		bundle:       cfg.Bundle,
		locale:       cfg.Locale,
		logger:       cfg.Logger,
		registry:     cfg.Registry,
		metrics:      newHTTPMetrics(cfg.Registry),
		secureCookie: cfg.SecureCookie,
		fields:       schema.Games(),
		pages:        pages,
		hub:          newHub(cfg.Logger),
	}
	s.unsubscribe = s.store.Subscribe(s.hub.broadcast)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.localize)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/games", http.StatusSeeOther)
	})

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Get("/new", s.handleNewForm)
			r.Post("/new", s.handleSubmit)
			r.Get("/{id}", s.handleEditForm)
			r.Post("/{id}", s.handleSubmit)
			r.Post("/{id}/delete", s.handleDelete)
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/games", s.apiList)
			r.Post("/games", s.apiCreate)
			r.Get("/games/{id}", s.apiGet)
			r.Put("/games/{id}", s.apiUpdate)
			r.Delete("/games/{id}", s.apiDelete)
			r.Get("/tags", s.apiTags)
		})

		r.Get("/ws", s.hub.ServeHTTP)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts the server down and closes
// every notification socket.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.unsubscribe()
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http: %w", err)
		}
		s.logger.Info("http server stopped")
		return nil
	})
	return g.Wait()
}
