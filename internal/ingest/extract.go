package ingest

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// The search page's markup is neither versioned nor stable, so every lookup
// below is an ordered fallback chain: each strategy is a total function from
// a card to an optional value, and the first non-empty result wins. A looser
// strategy only runs when every stricter one came up empty.

// extractor pulls one optional value out of a card.
type extractor func(*goquery.Selection) string

// firstNonEmpty applies extractors in order and returns the first hit.
func firstNonEmpty(card *goquery.Selection, chain ...extractor) string {
	for _, fn := range chain {
		if v := strings.TrimSpace(fn(card)); v != "" {
			return v
		}
	}
	return ""
}

// textOf returns the trimmed text of the first match for a selector.
func textOf(selector string) extractor {
	return func(card *goquery.Selection) string {
		return card.Find(selector).First().Text()
	}
}

// attrOf returns an attribute of the first match for a selector.
func attrOf(selector, attr string) extractor {
	return func(card *goquery.Selection) string {
		v, _ := card.Find(selector).First().Attr(attr)
		return v
	}
}

// cardStrategies locate candidate event cards, strictest first: the stable
// test identifier, then the known card class, then anything card-like.
var cardStrategies = []struct {
	name     string
	selector string
}{
	{"testid", `[data-testid="event-card"]`},
	{"class", `div[class*="event-card"]`},
	{"loose-class", `div[class*="card"]`},
}

// findCards returns the candidate cards and the name of the strategy that
// produced them. The first strategy yielding any matches wins.
func findCards(doc *goquery.Document) (*goquery.Selection, string) {
	for _, st := range cardStrategies {
		if sel := doc.Find(st.selector); sel.Length() > 0 {
			return sel, st.name
		}
	}
	return doc.Find(cardStrategies[0].selector), "none"
}

func extractTitle(card *goquery.Selection) string {
	return firstNonEmpty(card,
		textOf("h2"),
		textOf("h3"),
		textOf(`[class*="title"]`),
	)
}

func extractDescription(card *goquery.Selection) string {
	return firstNonEmpty(card,
		textOf(`p[class*="description"]`),
		textOf("p"),
		textOf(`[class*="description"]`),
	)
}

func extractLink(card *goquery.Selection) string {
	return firstNonEmpty(card,
		attrOf("a[href]", "href"),
	)
}

func extractDateText(card *goquery.Selection) string {
	return firstNonEmpty(card,
		attrOf("time[datetime]", "datetime"),
		attrOf("[data-start-time]", "data-start-time"),
		textOf("time"),
		textOf(`[class*="date"]`),
	)
}

func extractVenue(card *goquery.Selection) string {
	return firstNonEmpty(card,
		textOf(`[class*="event-location"] [class*="venue"]`),
		textOf(`[class*="venue"]`),
		textOf(`[class*="location"] span`),
	)
}

func extractAddress(card *goquery.Selection) string {
	return firstNonEmpty(card,
		textOf("address"),
		textOf(`[class*="address"]`),
	)
}

func extractOrganizerName(card *goquery.Selection) string {
	return firstNonEmpty(card,
		textOf(`[class*="organizer"] [class*="name"]`),
		textOf(`[class*="organizer"] span`),
		textOf(`[class*="host"]`),
	)
}

func extractOrganizerDescription(card *goquery.Selection) string {
	return firstNonEmpty(card,
		textOf(`[class*="organizer"] p`),
		textOf(`[class*="organizer"] [class*="description"]`),
	)
}

func extractImage(card *goquery.Selection) string {
	return firstNonEmpty(card,
		attrOf(`img[class*="event"]`, "src"),
		attrOf("img[src]", "src"),
	)
}

// startTimeLayouts are tried in order, machine-readable formats first.
// Layouts without a zone are interpreted as UTC.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
}

// parseStartTime attempts strict parsing of a date string. The second return
// is false when nothing matched; the caller substitutes fetch time.
func parseStartTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
