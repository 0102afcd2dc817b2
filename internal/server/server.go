// Package server implements the SecretHunter HTTP surface.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mobsec-labs/secrethunter/pkg/jobs"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/engine"
)

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxUploadBytes caps the accepted APK upload size.
	MaxUploadBytes int64
	// UploadDir holds request-scoped upload spool files. Empty means the
	// system temp directory.
	UploadDir string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8002,
		ReadTimeout:     5 * time.Minute,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadBytes:  100 * 1024 * 1024,
	}
}

// Server serves the scan API on top of a pipeline and a job store.
type Server struct {
	config     Config
	pipeline   *engine.Pipeline
	store      jobs.Store
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server around the given pipeline and store.
func New(config Config, pipeline *engine.Pipeline, store jobs.Store) *Server {
	return &Server{config: config, pipeline: pipeline, store: store}
}

// Handler returns the routed HTTP handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /scan", s.handleScan)
	mux.HandleFunc("GET /scan/{id}", s.handleGetScan)
	mux.HandleFunc("GET /scans", s.handleListScans)
	return s.loggingMiddleware(mux)
}

// Start begins serving. It returns once the listener is bound; serving
// continues in the background until Stop is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	log.Info().Str("addr", listener.Addr().String()).Msg("SecretHunter listening")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	log.Info().Msg("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound listener address, useful when Port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
