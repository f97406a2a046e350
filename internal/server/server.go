package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/api"
	"github.com/ziadkadry99/linebot-module/internal/logging"
)

// APIPrefix is where the webhook and REST endpoints are mounted.
const APIPrefix = "/api/v1"

// Config holds server configuration.
type Config struct {
	Addr           string
	Version        string
	RequestTimeout time.Duration // zero means 60s
}

// Server hosts the LINE bot API behind chi middleware.
type Server struct {
	cfg        Config
	api        *api.API
	log        *zap.Logger
	gatherer   prometheus.Gatherer
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for a. Metrics are exposed from gatherer, or from
// the default registry when gatherer is nil.
func New(cfg Config, a *api.API, logger *zap.Logger, gatherer prometheus.Gatherer) *Server {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		cfg:      cfg,
		api:      a,
		log:      logger,
		gatherer: gatherer,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.log))
	r.Use(recoverer(s.log))
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// CORS: the webhook is called server to server, browsers only hit the
	// read endpoints.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "LINE bot communication module is running",
			"version": s.cfg.Version,
			"status":  "healthy",
			"docs":    "/docs",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.HealthBody(s.cfg.Version))
	})
	r.Get("/docs", s.handleDocs)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	if s.api != nil {
		r.Route(APIPrefix, func(r chi.Router) {
			api.RegisterRoutes(r, s.api)
		})
	}

	return r
}

// handleDocs lists every registered route.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	var routes []string
	err := chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	if err != nil {
		s.log.Error("listing routes failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}
	sort.Strings(routes)
	writeJSON(w, http.StatusOK, map[string]any{
		"service": api.ServiceName,
		"version": s.cfg.Version,
		"routes":  routes,
	})
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address. It returns nil once
// the server has been shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("server listening", zap.String("addr", s.cfg.Addr), zap.String("version", s.cfg.Version))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return nil
}

// Shutdown stops accepting requests, then waits for in-flight deliveries
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
	}
	if s.api != nil {
		if err := s.api.Tasks().Wait(ctx); err != nil {
			return fmt.Errorf("waiting for deliveries: %w", err)
		}
	}
	s.log.Info("server stopped")
	return nil
}

// recoverer turns a panic into a JSON 500 without exposing the stack.
func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
