package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/domain"
	"tourbook/internal/flow"
	"tourbook/internal/richtext"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SubmissionGuard is the cross-request guard plus the per-client submit limit.
type SubmissionGuard interface {
	flow.Guard
	Allow(ctx context.Context, clientKey string) bool
}

// Deps are the collaborators the storefront pages are built from.
type Deps struct {
	Backend domain.Backend
	Guard   SubmissionGuard
	Events  domain.EventPublisher
	Logger  *zerolog.Logger
	Now     func() time.Time
}

// Server is the server-rendered storefront.
type Server struct {
	cfg     config.WebConfig
	backend domain.Backend
	guard   SubmissionGuard
	events  domain.EventPublisher
	logger  *zerolog.Logger
	now     func() time.Time
	rich    *richtext.Renderer
	pages   map[string]*template.Template
	server  *http.Server
}

func NewServer(cfg config.WebConfig, deps Deps) (*Server, error) {
	if deps.Backend == nil {
		return nil, errors.New("web: backend is required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		cfg:     cfg,
		backend: deps.Backend,
		guard:   deps.Guard,
		events:  deps.Events,
		logger:  logger,
		now:     now,
		rich:    richtext.New(),
		pages:   pages,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleCatalog)
	r.Get("/tour/{id}", s.handleDetail)
	r.Get("/tour/{id}/book", s.handleProceed)
	r.Get("/booking/{id}", s.handleBookingForm)
	r.Post("/booking/{id}", s.handleBookingSubmit)
	r.Get("/confirmation", s.handleConfirmation)
	r.Get("/confirmation/receipt.xlsx", s.handleReceipt)

	return r
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("storefront listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
