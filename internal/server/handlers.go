package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jpineda/lumaletter/internal/event"
	"github.com/jpineda/lumaletter/internal/ingest"
	"github.com/jpineda/lumaletter/internal/newsletter"
)

type errorResponse struct {
	Error string `json:"error"`
}

type eventsResponse struct {
	City     string        `json:"city"`
	Category string        `json:"category"`
	Count    int           `json:"count"`
	Events   []event.Event `json:"events"`
}

type newsletterRequest struct {
	City     string `json:"city"`
	Category string `json:"category"`
	Format   string `json:"format"`
}

type newsletterResponse struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	category := r.URL.Query().Get("category")
	if city == "" || category == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "city and category are required"})
		return
	}

	events, err := s.fetchEvents(r.Context(), city, category)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		City:     city,
		Category: category,
		Count:    len(events),
		Events:   events,
	})
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "newsletter generation is not configured"})
		return
	}

	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.City == "" || req.Category == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "city and category are required"})
		return
	}

	format, err := newsletter.ParseFormat(req.Format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	events, err := s.fetchEvents(r.Context(), req.City, req.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}

	content, err := s.renderer.Render(r.Context(), events, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newsletterResponse{
		Format:  string(format),
		Content: content,
	})
}

// writeError maps ingestion error kinds to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		unsupported *ingest.UnsupportedCityError
		unavailable *ingest.SourceUnavailableError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &unsupported):
		status = http.StatusBadRequest
	case errors.As(err, &unavailable):
		status = http.StatusBadGateway
	}

	s.logger.Error().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
