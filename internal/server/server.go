package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rickgao/onthisday/internal/history"
	"github.com/rickgao/onthisday/internal/metrics"
	"github.com/rickgao/onthisday/internal/model"
)

// Querier answers timeline queries. *history.Aggregator implements it.
type Querier interface {
	Day(ctx context.Context, month, day int) ([]model.TimelineEvent, error)
	Year(ctx context.Context, date model.Date) ([]model.TimelineEvent, error)
	Range(ctx context.Context, start model.Date) history.RangeResult
	Random(ctx context.Context, count int) history.RandomResult
}

// Config holds HTTP server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PageSize     int
	MaxPageSize  int
	MetricsPath  string // Empty disables the metrics route
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		PageSize:     10,
		MaxPageSize:  100,
	}
}

// Server serves the timeline API.
type Server struct {
	cfg     Config
	q       Querier
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	router   *mux.Router
	http     *http.Server
	listener net.Listener
	done     chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables request metrics and, with Config.MetricsPath, the scrape route.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithClock sets the clock used to resolve "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server and registers its routes.
func New(cfg Config, q Querier, opts ...Option) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = cfg.PageSize
	}

	s := &Server{
		cfg:    cfg,
		q:      q,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.observe)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/days/{month:[0-9]+}/{day:[0-9]+}", s.handleDay).Methods(http.MethodGet)
	api.HandleFunc("/days/{month:[0-9]+}/{day:[0-9]+}/groups", s.handleDayGroups).Methods(http.MethodGet)
	api.HandleFunc("/days/{month:[0-9]+}/{day:[0-9]+}/stream", s.handleDayStream).Methods(http.MethodGet)
	api.HandleFunc("/dates/{date}", s.handleDate).Methods(http.MethodGet)
	api.HandleFunc("/dates/{date}/range", s.handleRange).Methods(http.MethodGet)
	api.HandleFunc("/since/{year:-?[0-9]+}", s.handleSince).Methods(http.MethodGet)
	api.HandleFunc("/random", s.handleRandom).Methods(http.MethodGet)

	if s.metrics != nil && s.cfg.MetricsPath != "" {
		r.Handle(s.cfg.MetricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()

	s.logger.Info("http server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.done == nil {
		return nil
	}
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	<-s.done
	s.logger.Info("http server stopped")
	return nil
}
