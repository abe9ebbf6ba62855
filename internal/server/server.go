// Package server assembles the HTTP API: route registration, middleware
// chain, and server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spotdeck/spotdeck/internal/server/handler"
	"github.com/spotdeck/spotdeck/internal/server/middleware"
	"github.com/spotdeck/spotdeck/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimitRPS throttles per-client request rates; <= 0 disables
	// limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Handlers aggregates all HTTP handlers the server registers.
type Handlers struct {
	Health     *handler.HealthHandler
	Tickers    *handler.TickerHandler
	Status     *handler.StatusHandler
	Logs       *handler.LogsHandler
	Fetch      *handler.FetchHandler
	OrderBooks *handler.OrderBookHandler
	Lists      *handler.MarketListHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered and the middleware
// chain applied (rate limiting, auth, logging, CORS, outermost last).
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/tickers", handlers.Tickers.ListTickers)
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	mux.HandleFunc("GET /api/logs", handlers.Logs.ListLogs)
	mux.HandleFunc("POST /api/fetch/{exchange}", handlers.Fetch.TriggerFetch)

	// Symbols contain a slash ("BTC/USDT"), hence the trailing wildcard.
	mux.HandleFunc("GET /api/orderbook/{exchange}/{symbol...}", handlers.OrderBooks.GetOrderBook)
	mux.HandleFunc("GET /api/depth/{exchange}/{symbol...}", handlers.OrderBooks.GetDepth)

	mux.HandleFunc("POST /api/market-list/toggle", handlers.Lists.ToggleList)

	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	if cfg.RateLimitRPS > 0 {
		h = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(h)
	}
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

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
