package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(LumaConfig{APIKey: "test-key", BaseURL: baseURL}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(LumaConfig{}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestClientFetchEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/nyc/events" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-luma-api-key"); got != "test-key" {
			t.Errorf("x-luma-api-key = %q, want %q", got, "test-key")
		}
		if got := r.URL.Query().Get("filter"); got != "Tech" {
			t.Errorf("filter = %q, want %q", got, "Tech")
		}
		if got := r.URL.Query().Get("status"); got != "upcoming" {
			t.Errorf("status = %q, want %q", got, "upcoming")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"events": [
				{
					"id": "evt1",
					"title": "VC Office Hours",
					"description": "Walk-in sessions with seed investors.",
					"start_time": "2026-09-20T14:00:00-04:00",
					"end_time": "2026-09-20T16:00:00-04:00",
					"location": {"name": "Company HQ", "address": "1 Liberty Plaza"},
					"host": {"name": "Company Ventures", "bio": "NYC venture platform."},
					"url": "https://lu.ma/evt1",
					"image_url": "https://images.lu.ma/evt1.jpg"
				},
				{
					"id": "evt2",
					"title": "Broken Clock Meetup",
					"start_time": "not-a-timestamp",
					"url": "https://lu.ma/evt2"
				},
				{
					"id": "evt3",
					"title": "Online Demo Day",
					"start_time": "2026-09-21T17:00:00Z",
					"location": {"name": "Zoom"},
					"url": "https://lu.ma/evt3"
				}
			]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	events, err := c.FetchEvents(context.Background(), "NYC", "Tech")
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}

	// evt2 has an unparsable start_time and must be skipped, not abort the batch.
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.ID != "rest_evt1" {
		t.Errorf("expected ID 'rest_evt1', got %q", first.ID)
	}
	wantStart := time.Date(2026, 9, 20, 18, 0, 0, 0, time.UTC)
	if !first.StartTime.Equal(wantStart) || first.StartTime.Location() != time.UTC {
		t.Errorf("expected UTC start %v, got %v", wantStart, first.StartTime)
	}
	if first.EndTime == nil {
		t.Fatal("expected end time to be set")
	}
	wantEnd := time.Date(2026, 9, 20, 20, 0, 0, 0, time.UTC)
	if !first.EndTime.Equal(wantEnd) {
		t.Errorf("expected UTC end %v, got %v", wantEnd, first.EndTime)
	}
	if first.Location.City != "NYC" {
		t.Errorf("expected queried city, got %q", first.Location.City)
	}
	if first.Organizer.Name != "Company Ventures" {
		t.Errorf("unexpected organizer %q", first.Organizer.Name)
	}

	second := events[1]
	if second.EndTime != nil {
		t.Errorf("expected absent end time, got %v", second.EndTime)
	}
	if !second.IsVirtual {
		t.Error("Zoom venue should be derived as virtual")
	}
	if second.Description != "No description available" {
		t.Errorf("expected description sentinel, got %q", second.Description)
	}
}

func TestClientFetchEvents_UnsupportedCity(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchEvents(context.Background(), "Chicago", "Tech")

	var unsupported *UnsupportedCityError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedCityError, got %v", err)
	}
	if unsupported.City != "Chicago" {
		t.Errorf("expected city 'Chicago', got %q", unsupported.City)
	}
	if requests != 0 {
		t.Errorf("expected zero HTTP requests, got %d", requests)
	}
}

func TestClientFetchEvents_CityAliases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/nyc/events" {
			t.Errorf("expected 'New York' to resolve to nyc calendar, got path %q", r.URL.Path)
		}
		w.Write([]byte(`{"events": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.FetchEvents(context.Background(), "New York", "Tech"); err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
}

func TestClientFetchEvents_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchEvents(context.Background(), "NYC", "Tech")

	var unavailable *SourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *SourceUnavailableError, got %v", err)
	}
	if unavailable.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", unavailable.StatusCode)
	}
}

func TestClientFetchEvents_EmptyBatchIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	events, err := c.FetchEvents(context.Background(), "Boston", "Tech")
	if err != nil {
		t.Fatalf("expected success for empty batch, got %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty list, got %d events", len(events))
	}
}
