// Package web provides the HTTP server and handlers for the dashboard.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sidoarjo/callcenter/internal/auth"
	"github.com/sidoarjo/callcenter/internal/config"
	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/sidoarjo/callcenter/internal/web/middleware"
)

// Service is the core behaviour the handlers call. *core.Service satisfies it.
type Service interface {
	Schemas() []core.Schema
	Import(ctx context.Context, schemaKey, fileName string, r io.Reader) (*core.ImportResult, error)
	Preview(ctx context.Context, schemaKey string, r io.Reader) (*core.PreviewResult, error)
	Statistics(ctx context.Context, f core.StatsFilter) (*core.Statistics, error)
	Dashboard(ctx context.Context, f core.DashboardFilter) (*core.Dashboard, error)
	Search(ctx context.Context, f core.SearchFilter) ([]core.SearchResult, error)
	ExportStatistics(ctx context.Context, f core.StatsFilter, w io.Writer) (int, error)
	ExportSearch(ctx context.Context, f core.SearchFilter, w io.Writer) (int, error)
}

// Server is the HTTP server for the dashboard.
type Server struct {
	service  Service
	cfg      *config.Config
	auth     *auth.Authenticator
	sessions *auth.SessionManager
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service Service, cfg *config.Config) (*Server, error) {
	authn, err := auth.NewAuthenticator(cfg.Auth.Users)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	s := &Server{
		service:  service,
		cfg:      cfg,
		auth:     authn,
		sessions: auth.NewSessionManager(cfg.Auth),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
	s.router.Use(requestMetadata)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	limiter := newRateLimiter(s.cfg.Auth.LoginAttempts, s.cfg.Auth.LoginWindow)
	s.router.Get("/login", s.handleLoginPage)
	s.router.With(limiter.middleware).Post("/login", s.handleLogin)
	s.router.Post("/logout", s.handleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(s.sessions))

		// Uploads are bounded by the import timeout, not the request timeout.
		r.Post("/api/import/{schema}", s.handleImport)
		r.Post("/api/preview/{schema}", s.handlePreview)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
			r.Use(chimw.Compress(5))

			r.Get("/", s.handleDashboardPage)
			r.Get("/api/dashboard", s.handleDashboard)
			r.Get("/api/schemas", s.handleListSchemas)
			r.Get("/api/statistics/{schema}", s.handleStatistics)
			r.Get("/api/statistics/{schema}/export", s.handleStatisticsExport)
			r.Get("/api/search", s.handleSearch)
			r.Get("/api/search/export", s.handleSearchExport)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter allows rate requests per window for each client IP.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

// allow consumes a token for ip. Stale visitors are swept at most once per
// window, on the request path.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.window {
		for k, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(middleware.ClientIP(r)) {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			writeJSONStatus(w, http.StatusTooManyRequests, ErrorResponse{
				Error:   "too many sign-in attempts",
				Message: "too many sign-in attempts",
				Action:  "Wait a minute and try again",
				Code:    "AUTH003",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are only logged since
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
