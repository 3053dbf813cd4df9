package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jpineda/lumaletter/internal/event"
)

// Source turns one external data source into canonical events. Implementations
// issue exactly one outbound request per call and own no shared mutable state.
type Source interface {
	Name() string
	FetchEvents(ctx context.Context, city, category string) ([]event.Event, error)
}

// Config selects and parameterizes a source adapter.
type Config struct {
	Source string       `mapstructure:"source"`
	Luma   LumaConfig   `mapstructure:"luma"`
	Scrape ScrapeConfig `mapstructure:"scrape"`
}

// LumaConfig holds REST adapter settings.
type LumaConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScrapeConfig holds scrape adapter settings.
type ScrapeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewSource builds the configured source adapter.
func NewSource(cfg Config, logger zerolog.Logger) (Source, error) {
	switch cfg.Source {
	case "rest":
		return NewClient(cfg.Luma, logger)
	case "scrape", "":
		return NewScraper(cfg.Scrape, logger), nil
	default:
		return nil, fmt.Errorf("unknown ingest source: %q", cfg.Source)
	}
}

// Ingestor is the facade callers go through: it invokes the selected adapter
// and re-raises any failure as an IngestionError carrying the cause.
type Ingestor struct {
	source Source
	logger zerolog.Logger
}

// New creates an Ingestor around a source adapter.
func New(source Source, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		source: source,
		logger: logger.With().Str("component", "ingest").Logger(),
	}
}

// NewFromConfig creates an Ingestor with the adapter the config selects.
func NewFromConfig(cfg Config, logger zerolog.Logger) (*Ingestor, error) {
	src, err := NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(src, logger), nil
}

// Fetch returns the canonical events for a city and category. An empty list
// is a valid, non-error outcome; an error means the whole batch failed.
func (i *Ingestor) Fetch(ctx context.Context, city, category string) ([]event.Event, error) {
	i.logger.Info().
		Str("source", i.source.Name()).
		Str("city", city).
		Str("category", category).
		Msg("fetching events")

	events, err := i.source.FetchEvents(ctx, city, category)
	if err != nil {
		return nil, &IngestionError{Source: i.source.Name(), Err: err}
	}

	i.logger.Info().
		Str("source", i.source.Name()).
		Int("count", len(events)).
		Msg("fetch complete")

	return events, nil
}
