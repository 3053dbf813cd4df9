package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func cardFromHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing test HTML: %v", err)
	}
	return doc.Find("div").First()
}

func TestParseStartTime(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Time
		ok       bool
	}{
		{"2026-09-12T18:00:00Z", time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC), true},
		{"2026-09-12T14:00:00-04:00", time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC), true},
		{"2026-09-12T18:00:00", time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC), true},
		{"2026-09-12 18:00", time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC), true},
		{"2026-09-12", time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), true},
		{"Sep 12, 2026 6:00 PM", time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC), true},
		{"Sep 12, 2026", time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), true},
		{"next Tuesday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseStartTime(tt.raw)
			if ok != tt.ok {
				t.Fatalf("parseStartTime(%q) ok = %v, expected %v", tt.raw, ok, tt.ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("parseStartTime(%q) = %v, expected %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestExtractTitle_FallbackOrder(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			"h2 wins over h3 and class",
			`<div><h2>Primary</h2><h3>Secondary</h3><span class="card-title">Tertiary</span></div>`,
			"Primary",
		},
		{
			"h3 when no h2",
			`<div><h3>Secondary</h3><span class="card-title">Tertiary</span></div>`,
			"Secondary",
		},
		{
			"class match as last resort",
			`<div><span class="card-title">Tertiary</span></div>`,
			"Tertiary",
		},
		{
			"nothing found",
			`<div><p>Just text</p></div>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := cardFromHTML(t, tt.html)
			if got := extractTitle(card); got != tt.expected {
				t.Errorf("extractTitle = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestExtractDateText_FallbackOrder(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			"machine-readable attribute wins",
			`<div><time datetime="2026-09-12T18:00:00Z">Sep 12</time></div>`,
			"2026-09-12T18:00:00Z",
		},
		{
			"data attribute next",
			`<div><span data-start-time="2026-09-12 18:00">Sep 12</span></div>`,
			"2026-09-12 18:00",
		},
		{
			"visible time text last",
			`<div><time>Sep 12, 2026</time></div>`,
			"Sep 12, 2026",
		},
		{
			"date class when no time element",
			`<div><span class="event-date">Sep 12, 2026</span></div>`,
			"Sep 12, 2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := cardFromHTML(t, tt.html)
			if got := extractDateText(card); got != tt.expected {
				t.Errorf("extractDateText = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestExtractDescription_PrefersDescriptionClass(t *testing.T) {
	card := cardFromHTML(t, `<div>
		<p class="event-description">The real description.</p>
		<div class="organizer-info"><p>Organizer blurb.</p></div>
	</div>`)

	if got := extractDescription(card); got != "The real description." {
		t.Errorf("extractDescription = %q", got)
	}
}

func TestFindCards_FallbackChain(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		wantCount    int
		wantStrategy string
	}{
		{
			"test identifier",
			`<div data-testid="event-card"></div><div class="event-card"></div>`,
			1,
			"testid",
		},
		{
			"event-card class",
			`<div class="event-card a"></div><div class="event-card b"></div>`,
			2,
			"class",
		},
		{
			"loose card class",
			`<div class="content-card"></div>`,
			1,
			"loose-class",
		},
		{
			"no candidates",
			`<p>nothing here</p>`,
			0,
			"none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("parsing test HTML: %v", err)
			}
			sel, strategy := findCards(doc)
			if sel.Length() != tt.wantCount {
				t.Errorf("expected %d cards, got %d", tt.wantCount, sel.Length())
			}
			if strategy != tt.wantStrategy {
				t.Errorf("expected strategy %q, got %q", tt.wantStrategy, strategy)
			}
		})
	}
}
