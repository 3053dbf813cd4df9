package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jpineda/lumaletter/internal/event"
)

const (
	// DefaultAPIBaseURL is the public Luma API root.
	DefaultAPIBaseURL = "https://public-api.luma.com/v1"

	// DefaultAPITimeout bounds each API request.
	DefaultAPITimeout = 30 * time.Second
)

// cityCalendars maps a queried city to its Luma calendar identifier.
var cityCalendars = map[string]string{
	"nyc":      "nyc",
	"new york": "nyc",
	"boston":   "boston",
}

// Client fetches upcoming events from the Luma REST API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient creates a REST adapter. The API key is mandatory.
func NewClient(cfg LumaConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("luma API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "luma-api").Logger(),
	}, nil
}

// Name identifies this adapter in logs and wrapped errors.
func (c *Client) Name() string { return string(event.SourceREST) }

// apiEvent is one item in the calendar events response.
type apiEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartTime   string      `json:"start_time"`
	EndTime     string      `json:"end_time"`
	Location    apiLocation `json:"location"`
	Host        apiHost     `json:"host"`
	URL         string      `json:"url"`
	ImageURL    string      `json:"image_url"`
}

type apiLocation struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type apiHost struct {
	Name    string `json:"name"`
	Bio     string `json:"bio"`
	Website string `json:"website"`
}

type eventsResponse struct {
	Events []apiEvent `json:"events"`
}

// FetchEvents resolves the city to a calendar, issues one authenticated GET,
// and maps each response item independently. An item that fails mapping is
// logged and skipped; the batch only fails on transport or HTTP errors.
func (c *Client) FetchEvents(ctx context.Context, city, category string) ([]event.Event, error) {
	calendarID, err := c.calendarID(city)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	q := req.URL.Query()
	q.Set("filter", category)
	q.Set("status", "upcoming")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("x-luma-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SourceUnavailableError{Source: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SourceUnavailableError{Source: c.Name(), StatusCode: resp.StatusCode}
	}

	var body eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &SourceUnavailableError{Source: c.Name(), Err: fmt.Errorf("decoding response: %w", err)}
	}

	events := make([]event.Event, 0, len(body.Events))
	for _, item := range body.Events {
		evt, err := c.mapEvent(item, city, category)
		if err != nil {
			c.logger.Warn().
				Str("native_id", item.ID).
				Err(err).
				Msg("skipping event item")
			continue
		}
		events = append(events, evt)
	}

	c.logger.Debug().Int("fetched", len(body.Events)).Int("mapped", len(events)).Msg("mapped API response")
	return events, nil
}

// calendarID resolves a city name against the static lookup table.
func (c *Client) calendarID(city string) (string, error) {
	id, ok := cityCalendars[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return "", &UnsupportedCityError{City: city}
	}
	return id, nil
}

// mapEvent converts one API item to the canonical model.
func (c *Client) mapEvent(item apiEvent, city, category string) (event.Event, error) {
	if item.ID == "" {
		return event.Event{}, fmt.Errorf("item has no id")
	}

	start, err := time.Parse(time.RFC3339, item.StartTime)
	if err != nil {
		return event.Event{}, fmt.Errorf("parsing start_time %q: %w", item.StartTime, err)
	}

	var end *time.Time
	if item.EndTime != "" {
		t, err := time.Parse(time.RFC3339, item.EndTime)
		if err != nil {
			return event.Event{}, fmt.Errorf("parsing end_time %q: %w", item.EndTime, err)
		}
		end = &t
	}

	return event.New(event.Params{
		NativeID:    item.ID,
		Title:       item.Title,
		Description: item.Description,
		StartTime:   start,
		EndTime:     end,
		City:        city,
		Venue:       item.Location.Name,
		Address:     item.Location.Address,
		Organizer: event.Organizer{
			Name:        item.Host.Name,
			Description: item.Host.Bio,
			Website:     item.Host.Website,
		},
		URL:      item.URL,
		ImageURL: item.ImageURL,
		Category: category,
		Source:   event.SourceREST,
	})
}
