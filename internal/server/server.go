// Package server hosts the feastly REST API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/feastly/internal/auth/token"
	"github.com/louisbranch/feastly/internal/auth/user"
	"github.com/louisbranch/feastly/internal/catalog"
	"github.com/louisbranch/feastly/internal/order"
	"github.com/louisbranch/feastly/internal/server/httpx"
)

// Storage aggregates the persistence the API needs.
type Storage interface {
	catalog.Storage
	order.Storage
	user.Storage
}

// Config defines the inputs for the API server.
type Config struct {
	Addr   string
	Store  Storage
	Tokens token.Config
}

// Server hosts the REST API over net/http.
type Server struct {
	addr       string
	httpServer *http.Server
}

// NewServer builds a configured API server.
func NewServer(config Config) (*Server, error) {
	addr := strings.TrimSpace(config.Addr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	if config.Store == nil {
		return nil, errors.New("storage is required")
	}

	h := &handler{store: config.Store, tokens: config.Tokens}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants", h.listRestaurants)
	mux.HandleFunc("GET /api/restaurants/{id}", h.getRestaurant)
	mux.HandleFunc("GET /api/menu/{restaurantId}", h.listMenu)
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("POST /api/signup", h.signup)
	mux.HandleFunc("POST /api/login", h.login)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           httpx.Chain(mux, httpx.RequestID(), httpx.RecoverPanic(), httpx.AccessLog()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{addr: addr, httpServer: httpServer}, nil
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Handler
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return errors.New("api server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("api listening on %s", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
