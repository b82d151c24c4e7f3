package server

import (
	"context"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fastjson"

	"github.com/coffersTech/logfilter/internal/config"
	"github.com/coffersTech/logfilter/internal/library"
	"github.com/coffersTech/logfilter/internal/log"
	"github.com/coffersTech/logfilter/internal/metrics"
	"github.com/coffersTech/logfilter/internal/pkg/filterql"
	"github.com/coffersTech/logfilter/internal/pkg/security"
)

// maxBodySize caps request bodies on the JSON endpoints.
const maxBodySize = 1 << 20

// FilterServer exposes the parser and the saved-filter library over HTTP.
type FilterServer struct {
	store    *library.Store
	parser   filterql.Options
	verifier *security.KeyVerifier
	logger   log.Logger
	metrics  *metrics.Metrics

	srv        *http.Server
	jsonParser fastjson.ParserPool
}

// Option configures a FilterServer.
type Option func(*FilterServer)

// WithParser sets the options used for every parse request.
func WithParser(opts filterql.Options) Option {
	return func(s *FilterServer) { s.parser = opts }
}

func WithLogger(logger log.Logger) Option {
	return func(s *FilterServer) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *FilterServer) { s.metrics = m }
}

// NewFilterServer validates cfg and builds a server around store.
func NewFilterServer(cfg config.ServerConfig, store *library.Store, opts ...Option) (*FilterServer, error) {
	verifier, err := security.NewKeyVerifier(cfg.APIKeyHash)
	if err != nil {
		return nil, err
	}
	s := &FilterServer{
		store:    store,
		verifier: verifier,
		logger:   log.NewNopLogger(),
		metrics:  metrics.NopMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the full routing tree with middleware applied.
func (s *FilterServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/healthz", s.instrument("/healthz", http.HandlerFunc(s.handleHealth)))
	mux.Handle("/metrics", s.instrument("/metrics", promhttp.Handler()))

	// API routes (protected)
	mux.Handle("/api/parse", s.instrument("/api/parse", s.AuthMiddleware(http.HandlerFunc(s.handleParse))))
	mux.Handle("/api/tokens", s.instrument("/api/tokens", s.AuthMiddleware(http.HandlerFunc(s.handleTokens))))
	mux.Handle("/api/filters", s.instrument("/api/filters", s.AuthMiddleware(http.HandlerFunc(s.handleFilters))))
	mux.Handle("/api/filters/", s.instrument("/api/filters/{name}", s.AuthMiddleware(http.HandlerFunc(s.handleFilterItem))))

	return requestID(gzhttp.GzipHandler(mux))
}

// Start runs the HTTP server on the configured address. It returns nil after
// Shutdown.
func (s *FilterServer) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *FilterServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
