// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/curehelp/curehelp-go/internal/domain/ports"
	"github.com/curehelp/curehelp-go/internal/domain/usecases"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Deps are the use cases and adapters the handlers call.
type Deps struct {
	Query     *usecases.QueryUseCase
	Datasets  *usecases.DatasetUseCase
	Assess    *usecases.AssessUseCase
	Profiles  *usecases.ProfileUseCase
	Reports   *usecases.ReportUseCase
	Providers ports.ProviderDirectory
}

// Server is the HTTP server for the chat and risk API.
type Server struct {
	deps   Deps
	logger *slog.Logger
	addr   string
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, logger: logger, addr: addr}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(limitBodySize(maxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/chat", s.handleChat)

		r.Route("/providers", func(r chi.Router) {
			r.Get("/hospitals", s.handleHospitals)
			r.Get("/doctors", s.handleDoctors)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", s.handleCreateProfile)
			r.Get("/", s.handleListProfiles)
			r.Get("/{id}", s.handleGetProfile)
		})

		r.Get("/assessments", s.handleListConditions)
		r.Post("/assessments/{condition}", s.handleAssess)
		r.Post("/reports", s.handleReport)
	})

	return r
}

// Start runs the HTTP server until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
