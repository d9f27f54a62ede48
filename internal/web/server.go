package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/facegate/facegate/internal/store"
	"github.com/facegate/facegate/internal/web/middleware"
)

// Server is the attendance ledger HTTP server. It owns the roster, the
// reference images and the attendance log that kiosks submit against.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      store.Store
}

// NewServer creates a new ledger server backed by the given store.
// imageDir is the directory reference face images are served from.
func NewServer(s store.Store, imageDir, host string, port int) *Server {
	r := chi.NewRouter()

	srv := &Server{
		router: r,
		store:  s,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(middleware.CORS())

	srv.setupRoutes(imageDir)

	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return srv
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting ledger server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down ledger server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
