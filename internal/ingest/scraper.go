package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jpineda/lumaletter/internal/event"
)

const (
	// DefaultScrapeBaseURL is the Luma site root; relative event links are
	// resolved against it.
	DefaultScrapeBaseURL = "https://lu.ma"

	// DefaultScrapeTimeout bounds the single search request.
	DefaultScrapeTimeout = 30 * time.Second

	searchPath = "/search/events"
)

// browserHeaders is the browser-like header set sent with every search
// request. The site varies its markup and rejects obvious non-browser
// clients, so this is part of the adapter's contract, not decoration.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// Scraper fetches upcoming events by scraping the Luma search results page.
type Scraper struct {
	baseURL *url.URL
	client  *http.Client
	logger  zerolog.Logger

	// now supplies the fetch-time fallback for unparsable dates; replaced
	// in tests.
	now func() time.Time
}

// NewScraper creates a scrape adapter.
func NewScraper(cfg ScrapeConfig, logger zerolog.Logger) *Scraper {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultScrapeBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		base, _ = url.Parse(DefaultScrapeBaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultScrapeTimeout
	}

	return &Scraper{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "scraper").Logger(),
		now:     time.Now,
	}
}

// Name identifies this adapter in logs and wrapped errors.
func (s *Scraper) Name() string { return string(event.SourceScrape) }

// FetchEvents issues one search request and parses the returned markup.
// Parsing degrades field by field: a card missing its title or link is
// skipped, every other missing field falls back to its default.
func (s *Scraper) FetchEvents(ctx context.Context, city, category string) ([]event.Event, error) {
	searchURL := *s.baseURL
	searchURL.Path = searchPath

	q := searchURL.Query()
	q.Set("q", fmt.Sprintf("%s in %s", category, city))
	q.Set("type", "events")
	q.Set("sort", "upcoming")
	searchURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SourceUnavailableError{Source: s.Name(), StatusCode: resp.StatusCode}
	}

	return s.parseSearchResults(resp.Body, city, category)
}

// cardResult is the outcome of parsing one candidate card: either a canonical
// event or a reason the card was skipped. Making the skip explicit keeps the
// skip-vs-abort policy testable without exception-style control flow.
type cardResult struct {
	event event.Event
	skip  error
}

// parseSearchResults extracts events from the search results markup.
func (s *Scraper) parseSearchResults(r io.Reader, city, category string) ([]event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	cards, strategy := findCards(doc)
	s.logger.Debug().
		Int("cards", cards.Length()).
		Str("strategy", strategy).
		Msg("located candidate cards")

	events := make([]event.Event, 0, cards.Length())
	skipped := 0

	cards.Each(func(i int, card *goquery.Selection) {
		res := s.parseCard(card, city, category)
		if res.skip != nil {
			skipped++
			s.logger.Warn().Int("card", i).Err(res.skip).Msg("skipping card")
			return
		}
		events = append(events, res.event)
	})

	s.logger.Info().
		Int("found", cards.Length()).
		Int("parsed", len(events)).
		Int("skipped", skipped).
		Msg("parsed search results")

	return events, nil
}

// parseCard maps one card to a canonical event. Only a missing title or link
// fails the card; a bad timestamp degrades to fetch time and everything else
// to its documented default.
func (s *Scraper) parseCard(card *goquery.Selection, city, category string) cardResult {
	title := extractTitle(card)
	if title == "" {
		return cardResult{skip: fmt.Errorf("card has no title")}
	}

	href := extractLink(card)
	if href == "" {
		return cardResult{skip: fmt.Errorf("card has no link")}
	}
	eventURL, err := s.resolveURL(href)
	if err != nil {
		return cardResult{skip: fmt.Errorf("resolving link %q: %w", href, err)}
	}

	start, ok := parseStartTime(extractDateText(card))
	if !ok {
		// Lossy fallback: keep the card, stamp it with fetch time.
		start = s.now().UTC()
	}

	venue := extractVenue(card)
	evt, err := event.New(event.Params{
		NativeID:    lastPathSegment(eventURL),
		Title:       title,
		Description: extractDescription(card),
		StartTime:   start,
		City:        city,
		Venue:       venue,
		Address:     extractAddress(card),
		Organizer: event.Organizer{
			Name:        extractOrganizerName(card),
			Description: extractOrganizerDescription(card),
		},
		URL:      eventURL.String(),
		ImageURL: extractImage(card),
		Category: category,
		Source:   event.SourceScrape,
	})
	if err != nil {
		return cardResult{skip: err}
	}

	return cardResult{event: evt}
}

// resolveURL makes an extracted href absolute against the site base.
func (s *Scraper) resolveURL(href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, err
	}
	return s.baseURL.ResolveReference(ref), nil
}

// lastPathSegment returns the trailing path element of an event URL, which is
// the item's native identifier on the site.
func lastPathSegment(u *url.URL) string {
	trimmed := strings.TrimRight(u.Path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
