package event

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies which adapter produced an event.
type Source string

const (
	SourceREST   Source = "rest"
	SourceScrape Source = "scrape"
)

// DefaultDescription is the sentinel used when a source omits the description.
const DefaultDescription = "No description available"

// DefaultVenue is the sentinel used when a source omits the venue.
const DefaultVenue = "TBA"

// DefaultOrganizer is the sentinel used when a source omits the organizer name.
const DefaultOrganizer = "Unknown Organizer"

// virtualKeywords mark a venue as online rather than physical.
var virtualKeywords = []string{"virtual", "online", "zoom", "remote", "webinar"}

// Location describes where an event takes place. City is always the queried
// city, not whatever the source reports.
type Location struct {
	City    string `json:"city"`
	Venue   string `json:"venue"`
	Address string `json:"address,omitempty"`
}

// Organizer describes who runs an event.
type Organizer struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Event is the canonical record both source adapters produce. Values are
// immutable after construction; timestamps are always UTC.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Location    Location   `json:"location"`
	Organizer   Organizer  `json:"organizer"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url,omitempty"`
	Category    []string   `json:"category"`
	IsVirtual   bool       `json:"is_virtual"`
	Source      Source     `json:"source"`
}

// ValidationError reports a canonical record that cannot be constructed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: field %q %s", e.Field, e.Reason)
}

// Params carries the raw material for one canonical event. Optional fields
// left zero fall back to their documented defaults.
type Params struct {
	NativeID    string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	City        string
	Venue       string
	Address     string
	Organizer   Organizer
	URL         string
	ImageURL    string
	Category    string
	Source      Source
}

// New validates and constructs a canonical event. Title, start time, and URL
// are mandatory; everything else degrades to a default rather than failing.
func New(p Params) (Event, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return Event{}, &ValidationError{Field: "title", Reason: "is required"}
	}
	if p.StartTime.IsZero() {
		return Event{}, &ValidationError{Field: "start_time", Reason: "is required"}
	}
	if strings.TrimSpace(p.URL) == "" {
		return Event{}, &ValidationError{Field: "url", Reason: "is required"}
	}

	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		desc = DefaultDescription
	}

	venue := strings.TrimSpace(p.Venue)
	if venue == "" {
		venue = DefaultVenue
	}

	org := p.Organizer
	if strings.TrimSpace(org.Name) == "" {
		org.Name = DefaultOrganizer
	}

	var end *time.Time
	if p.EndTime != nil {
		u := p.EndTime.UTC()
		end = &u
	}

	return Event{
		ID:          GenerateID(p.Source, p.NativeID),
		Title:       title,
		Description: desc,
		StartTime:   p.StartTime.UTC(),
		EndTime:     end,
		Location: Location{
			City:    p.City,
			Venue:   venue,
			Address: strings.TrimSpace(p.Address),
		},
		Organizer: org,
		URL:       p.URL,
		ImageURL:  p.ImageURL,
		Category:  []string{p.Category},
		IsVirtual: IsVirtualVenue(venue),
		Source:    p.Source,
	}, nil
}

// GenerateID creates a deterministic ID from the source tag and the native
// identifier, so repeated fetches of the same item produce the same ID.
func GenerateID(source Source, nativeID string) string {
	return fmt.Sprintf("%s_%s", source, nativeID)
}

// IsVirtualVenue reports whether a venue string names an online event. The
// flag is always derived here, never taken from the source.
func IsVirtualVenue(venue string) bool {
	lower := strings.ToLower(venue)
	for _, kw := range virtualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
