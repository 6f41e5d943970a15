// Package server exposes the icon catalog over HTTP: a JSON manifest, the
// sanitized markup of each icon, pending rejections, a gallery page and a
// websocket that announces catalog rebuilds.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/iconward/internal/catalog"
	"github.com/conneroisu/iconward/internal/logging"
	"github.com/conneroisu/iconward/internal/metrics"
)

// CatalogFactory builds a fresh catalog. Catalogs are immutable, so every
// refresh asks the factory for a new one.
type CatalogFactory func() *catalog.Catalog

// Options configures a Server.
type Options struct {
	Addr    string
	Factory CatalogFactory
	Logger  logging.Logger
	// OriginPatterns lists extra hosts allowed to open the websocket. The
	// serving host is always allowed.
	OriginPatterns []string
	Security       *SecurityConfig
}

// Server serves the current catalog.
type Server struct {
	addr     string
	factory  CatalogFactory
	logger   logging.Logger
	origins  []string
	security *SecurityConfig

	current      atomic.Pointer[catalog.Catalog]
	refreshMutex sync.Mutex
	hub          *hub

	httpServer  *http.Server
	serverMutex sync.Mutex
}

// UpdateMessage is pushed to websocket clients.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Icons     int       `json:"icons,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageCatalogUpdated announces that a rebuilt catalog is being served.
const MessageCatalogUpdated = "catalog_updated"

// New creates a server and builds its first catalog.
func New(opts Options) (*Server, error) {
	if opts.Factory == nil {
		return nil, fmt.Errorf("server: catalog factory is required")
	}
	logger := logging.OrNop(opts.Logger).WithComponent("server")
	s := &Server{
		addr:     opts.Addr,
		factory:  opts.Factory,
		logger:   logger,
		origins:  opts.OriginPatterns,
		security: opts.Security,
		hub:      newHub(logger),
	}
	s.current.Store(s.build())
	return s, nil
}

func (s *Server) build() *catalog.Catalog {
	c := s.factory()
	// Build now so requests never pay for the scan.
	c.GetAllIcons()
	return c
}

// Catalog returns the catalog currently served.
func (s *Server) Catalog() *catalog.Catalog {
	return s.current.Load()
}

// Refresh swaps in a newly built catalog and notifies websocket clients.
func (s *Server) Refresh(ctx context.Context) {
	s.refreshMutex.Lock()
	c := s.build()
	s.current.Store(c)
	s.refreshMutex.Unlock()

	count := len(c.Keys())
	s.logger.Info(ctx, "Icon catalog refreshed", "icons", count)

	data, err := json.Marshal(UpdateMessage{
		Type:      MessageCatalogUpdated,
		Icons:     count,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Error(ctx, err, "Failed to encode update message")
		return
	}
	s.hub.broadcast(data)
}

// ClientCount reports connected websocket clients.
func (s *Server) ClientCount() int {
	return s.hub.count()
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/icons", s.handleManifest)
	mux.HandleFunc("GET /api/rejections", s.handleRejections)
	mux.HandleFunc("GET /icons/{file}", s.handleIcon)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.Handle("GET /metrics", metrics.Handler())

	return metrics.Middleware(SecurityMiddleware(s.security)(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Serving icon catalog", "addr", s.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes websocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()

	s.serverMutex.Lock()
	server := s.httpServer
	s.serverMutex.Unlock()

	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
