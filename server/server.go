package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/anvers/folio"
)

// Config holds server configuration.
type Config struct {
	Port       int
	Log        zerolog.Logger
	LedgerPath string
	ConfigPath string
	Portfolio  *folio.Portfolio
}

// Server is the HTTP API over a loaded portfolio.
//
// The portfolio snapshot is swapped atomically on reload; handlers grab it
// once per request and work on an immutable view throughout.
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	ledgerPath string
	configPath string
	portfolio  atomic.Pointer[folio.Portfolio]
}

// New creates the HTTP server around an already loaded portfolio.
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "server").Logger(),
		ledgerPath: cfg.LedgerPath,
		configPath: cfg.ConfigPath,
	}
	s.portfolio.Store(cfg.Portfolio)

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/returns", s.handleReturns)
		r.Get("/compare", s.handleCompare)
		r.Get("/dividends", s.handleDividends)
		r.Get("/cash_flows", s.handleCashFlows)
		r.Get("/investments", s.handleInvestments)
		r.Get("/missing_prices", s.handleMissingPrices)
		r.Post("/reload", s.handleReload)
	})
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Portfolio returns the current snapshot.
func (s *Server) Portfolio() *folio.Portfolio { return s.portfolio.Load() }

// Reload rebuilds the portfolio from disk and swaps the snapshot. In-flight
// requests keep working on the old one.
func (s *Server) Reload() error {
	p, err := folio.LoadPortfolio(s.ledgerPath, s.configPath)
	if err != nil {
		return err
	}
	s.portfolio.Store(p)
	s.log.Info().Str("ledger", s.ledgerPath).Msg("portfolio reloaded")
	return nil
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting http server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"status": "ok"})
}
