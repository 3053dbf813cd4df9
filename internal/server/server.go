// Package server exposes the ingestion pipeline and newsletter renderer over
// HTTP. Retry policy for transient source failures lives here, at the caller
// side of the ingestion facade, never inside the adapters.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/jpineda/lumaletter/internal/config"
	"github.com/jpineda/lumaletter/internal/event"
	"github.com/jpineda/lumaletter/internal/ingest"
	"github.com/jpineda/lumaletter/internal/newsletter"
)

// Server is the HTTP boundary around ingestion and rendering.
type Server struct {
	cfg      config.ServerConfig
	ingestor *ingest.Ingestor
	renderer *newsletter.Renderer
	logger   zerolog.Logger
	mux      *http.ServeMux
}

// New creates a Server. The renderer may be nil when no AI credentials are
// configured; the newsletter endpoint then reports 503.
func New(cfg config.ServerConfig, ingestor *ingest.Ingestor, renderer *newsletter.Renderer, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		ingestor: ingestor,
		renderer: renderer,
		logger:   logger.With().Str("component", "server").Logger(),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /events", s.handleEvents)
	s.mux.HandleFunc("POST /newsletter", s.handleNewsletter)

	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.withLogging(s.mux))
}

// ListenAndServe blocks serving HTTP until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("listen", s.cfg.Listen).Msg("starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// fetchEvents runs one ingestion, retrying only transient source failures a
// bounded number of times.
func (s *Server) fetchEvents(ctx context.Context, city, category string) ([]event.Event, error) {
	var events []event.Event

	op := func() error {
		var err error
		events, err = s.ingestor.Fetch(ctx, city, category)
		if err == nil {
			return nil
		}

		var unavailable *ingest.SourceUnavailableError
		if errors.As(err, &unavailable) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.cfg.FetchRetries),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return events, nil
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// withCORS applies the configured allowed origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := "*"
	if len(s.cfg.AllowedOrigins) > 0 {
		origin = s.cfg.AllowedOrigins[0]
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
