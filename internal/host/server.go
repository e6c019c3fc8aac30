package host

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/base-tetris/internal/config"
)

// Server serves the manifest and webhook endpoints.
type Server struct {
	router   chi.Router
	server   *http.Server
	manifest []byte
	logger   *log.Logger
}

// NewServer creates a server listening on cfg.Listen.
// A nil logger discards log output.
func NewServer(cfg config.HostConfig, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	manifest, err := BuildManifest(cfg).JSON()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	s := &Server{
		router:   r,
		manifest: manifest,
		logger:   logger,
		server: &http.Server{
			Addr:         cfg.Listen,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}

	r.Use(chimid.RequestID)
	r.Use(chimid.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Get(ManifestPath, s.handleManifest)
	r.Post(WebhookPath, s.handleWebhook)
	r.Get(WebhookPath, s.handleWebhookStatus)

	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting host server", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleManifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.manifest)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("webhook error", "error", err, "request_id", chimid.GetReqID(r.Context()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}

	s.logger.Info("webhook received", "event", body["event"], "request_id", chimid.GetReqID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleWebhookStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Webhook endpoint active"})
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimid.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
