// Package api provides the HTTP REST API server for fundalens.
//
// It exposes the analysis report, the provider registry, and the effective
// configuration behind a standard JSON envelope.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fundalens/internal/config"
	"github.com/seenimoa/fundalens/internal/engine"
	"github.com/seenimoa/fundalens/internal/provider"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	reg     *provider.Registry
	engine  *engine.Engine
	log     zerolog.Logger
	version string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, reg *provider.Registry, eng *engine.Engine, log zerolog.Logger) *Server {
	srv := &Server{
		cfg:     cfg,
		reg:     reg,
		engine:  eng,
		log:     log,
		version: "dev",
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetVersion sets the version string reported by /health.
func (s *Server) SetVersion(v string) {
	if v != "" {
		s.version = v
	}
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info().Str("addr", addr).Msg("API server listening")

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	s.log.Info().Msg("shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/report/{ticker}", s.handleReport)
		r.Get("/providers", s.handleProviders)
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ProviderSummary describes one registered provider.
type ProviderSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Website     string   `json:"website,omitempty"`
	Models      []string `json:"models"`
	DefaultFor  []string `json:"default_for,omitempty"`
	NeedsKey    bool     `json:"needs_key"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleReport runs a full analysis for the path ticker. Query parameters:
// provider (preferred provider name), news (bool), news_limit (int).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	opts := engine.Options{Provider: r.URL.Query().Get("provider")}
	if v := r.URL.Query().Get("news"); v != "" {
		withNews, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid news parameter: "+v)
			return
		}
		opts.WithNews = withNews
	}
	if v := r.URL.Query().Get("news_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid news_limit parameter: "+v)
			return
		}
		opts.NewsLimit = n
	}

	report, err := s.engine.Analyze(r.Context(), ticker, opts)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTicker) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: report})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	infos := s.reg.List()
	summaries := make([]ProviderSummary, 0, len(infos))
	for _, info := range infos {
		ps := ProviderSummary{
			Name:        info.Name,
			Description: info.Description,
			Website:     info.Website,
			NeedsKey:    len(info.Credentials) > 0,
		}
		for _, m := range info.Models {
			ps.Models = append(ps.Models, string(m))
			if def, ok := s.reg.DefaultProvider(m); ok && def == info.Name {
				ps.DefaultFor = append(ps.DefaultFor, string(m))
			}
		}
		sort.Strings(ps.Models)
		sort.Strings(ps.DefaultFor)
		summaries = append(summaries, ps)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: summaries})
}

// ============================================================
// Response writers
// ============================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("write JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
