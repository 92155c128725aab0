// Package server exposes the correction pipeline over HTTP.
//
// Routes:
//
//	POST   /v1/corrections              — correct one transcript
//	POST   /v1/sessions/{id}/documents  — ingest a reference document
//	GET    /v1/sessions/{id}/terms      — list a session's reference terms
//	DELETE /v1/sessions/{id}            — drop a session's corpus
//	GET    /v1/stats                    — correction statistics snapshot
//	POST   /v1/stats/reset              — zero the statistics
//	GET    /healthz, /readyz            — liveness and readiness probes
//	GET    /metrics                     — Prometheus scrape endpoint
//
// All handlers run behind the observe middleware, so every request carries a
// trace span, a correlation ID, and a duration sample.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/islamborghini/livecaps/internal/correction"
	"github.com/islamborghini/livecaps/internal/health"
	"github.com/islamborghini/livecaps/internal/observe"
	"github.com/islamborghini/livecaps/internal/terms"
	"github.com/islamborghini/livecaps/pkg/corpus"
	"github.com/islamborghini/livecaps/pkg/provider/doctext"
)

const (
	// defaultAddr is the listen address when none is configured.
	defaultAddr = ":8080"

	// shutdownTimeout bounds graceful drain of in-flight requests.
	shutdownTimeout = 10 * time.Second
)

// Option is a functional option for [New].
type Option func(*Server)

// WithAddr sets the listen address. Default ":8080".
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithLogger sets the logger. Default [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics sets the metrics instance shared with the rest of the process.
// Default [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithDocText sets the document text extractor used by the ingestion
// endpoint. Default [doctext.NewPlain].
func WithDocText(p doctext.Provider) Option {
	return func(s *Server) { s.docText = p }
}

// WithExtractor sets the term extractor used by the ingestion endpoint.
// Default [terms.New] with default options.
func WithExtractor(e *terms.Extractor) Option {
	return func(s *Server) { s.extractor = e }
}

// WithHealthCheckers registers readiness checkers for /readyz.
func WithHealthCheckers(checkers ...health.Checker) Option {
	return func(s *Server) { s.checkers = append(s.checkers, checkers...) }
}

// WithTLS serves HTTPS using the given certificate and key files.
func WithTLS(certFile, keyFile string) Option {
	return func(s *Server) {
		s.certFile = certFile
		s.keyFile = keyFile
	}
}

// Server owns the HTTP listener and routes requests into the correction
// pipeline and corpus store.
type Server struct {
	orchestrator *correction.Orchestrator
	store        corpus.Store
	extractor    *terms.Extractor
	docText      doctext.Provider
	metrics      *observe.Metrics
	checkers     []health.Checker
	log          *slog.Logger

	addr     string
	certFile string
	keyFile  string

	httpServer *http.Server
}

// New wires a [Server] around the orchestrator and store. The returned server
// is not listening yet; call [Server.Run].
func New(orchestrator *correction.Orchestrator, store corpus.Store, opts ...Option) *Server {
	s := &Server{
		orchestrator: orchestrator,
		store:        store,
		addr:         defaultAddr,
		log:          slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.docText == nil {
		s.docText = doctext.NewPlain()
	}
	if s.extractor == nil {
		s.extractor = terms.New()
	}

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler builds the full route table wrapped in the observe middleware.
// Exposed separately so tests can drive the server through httptest without
// binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/corrections", s.handleCorrect)
	mux.HandleFunc("POST /v1/sessions/{id}/documents", s.handleIngestDocument)
	mux.HandleFunc("GET /v1/sessions/{id}/terms", s.handleSessionTerms)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("POST /v1/stats/reset", s.handleStatsReset)

	health.New(s.checkers...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

// Run starts the listener and blocks until ctx is cancelled or the listener
// fails. On cancellation it drains in-flight requests for up to
// [shutdownTimeout] before returning.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.addr, "tls", s.certFile != "")
		var err error
		if s.certFile != "" {
			err = s.httpServer.ListenAndServeTLS(s.certFile, s.keyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
