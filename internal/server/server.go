// Package server hosts the HTTP and WebSocket API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Skysparko/trust-ledger-backend/internal/server/handler"
	"github.com/Skysparko/trust-ledger-backend/internal/server/middleware"
	"github.com/Skysparko/trust-ledger-backend/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers the server registers.
type Handlers struct {
	Health        *handler.HealthHandler
	Investments   *handler.InvestmentHandler
	Opportunities *handler.OpportunityHandler
	Documents     *handler.DocumentHandler
	Stats         *handler.StatsHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered and the middleware
// chain (auth, logging, CORS) applied. Documents may carry a nil handler
// when blob storage is not configured; its routes are then not registered.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Investor surface.
	mux.HandleFunc("POST /api/investments", handlers.Investments.Create)
	mux.HandleFunc("GET /api/investments/{id}", handlers.Investments.Get)
	mux.HandleFunc("GET /api/users/{id}/investments", handlers.Investments.ListByUser)
	mux.HandleFunc("GET /api/opportunities", handlers.Opportunities.List)
	mux.HandleFunc("GET /api/opportunities/{id}", handlers.Opportunities.Get)

	// Admin surface.
	mux.HandleFunc("POST /api/admin/investments/{id}/confirm", handlers.Investments.Confirm)
	mux.HandleFunc("POST /api/admin/investments/{id}/cancel", handlers.Investments.Cancel)
	mux.HandleFunc("GET /api/admin/opportunities/{id}/investments", handlers.Opportunities.ListInvestments)
	mux.HandleFunc("PUT /api/admin/opportunities/{id}/contract", handlers.Opportunities.RecordContract)
	mux.HandleFunc("GET /api/admin/stats", handlers.Stats.Platform)

	// Documents, when blob storage is configured.
	if handlers.Documents != nil {
		mux.HandleFunc("POST /api/admin/opportunities/{id}/documents", handlers.Documents.Upload)
		mux.HandleFunc("GET /api/opportunities/{id}/documents", handlers.Documents.List)
		mux.HandleFunc("GET /api/documents/{id}", handlers.Documents.Download)
	}

	// Event stream.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware sets CORS headers for the allowed origins. If no origins
// are configured, all origins are allowed.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
