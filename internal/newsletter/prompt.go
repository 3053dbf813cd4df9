package newsletter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jpineda/lumaletter/internal/event"
)

// Format is an output preset for the generated copy.
type Format string

const (
	FormatEmail    Format = "email"
	FormatLinkedIn Format = "linkedin"
)

// maxTokensFor caps the completion per preset.
func maxTokensFor(format Format) int {
	if format == FormatLinkedIn {
		return 500
	}
	return 1000
}

const systemPrompt = `You are an expert newsletter writer for startup founders and VCs, specializing in tech and investment events in the US East Coast. Your writing style is professional, concise, and insightful, similar to top-tier VC newsletters like a16z and Bessemer Venture Partners.

Key Requirements:
1. Tone: Professional, concise, insightful. Avoid overly promotional language.
2. Audience: Tech startup founders and investors - smart, busy professionals.
3. Style: Data-driven insights, clear value propositions, actionable takeaways.

Format Requirements:
- Email: 300-500 words, comprehensive yet concise
- LinkedIn: 150-250 words, punchy and engaging

Your content should help busy professionals quickly decide which events are worth their time.`

// buildPrompt renders the user prompt: events grouped by city, cities in
// stable alphabetical order, one block per event.
func buildPrompt(events []event.Event, format Format) string {
	byCity := make(map[string][]event.Event)
	for _, evt := range events {
		byCity[evt.Location.City] = append(byCity[evt.Location.City], evt)
	}

	cities := make([]string, 0, len(byCity))
	for city := range byCity {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	var desc strings.Builder
	for _, city := range cities {
		fmt.Fprintf(&desc, "\n%s Events:\n", city)
		for _, evt := range byCity[city] {
			kind := "In-person"
			if evt.IsVirtual {
				kind = "Online"
			}
			fmt.Fprintf(&desc, `
- Event: %s
  Date: %s
  Time: %s
  Location: %s (%s)
  Description: %s
  Organizer: %s
  URL: %s
`,
				evt.Title,
				evt.StartTime.Format("January 02, 2006"),
				evt.StartTime.Format("03:04 PM"),
				evt.Location.Venue,
				kind,
				evt.Description,
				evt.Organizer.Name,
				evt.URL,
			)
		}
	}

	lengthReq := "- Length: 300-500 words, provide sufficient details and context"
	styleReq := "Provide comprehensive overview"
	if format == FormatLinkedIn {
		lengthReq = "- Length: 150-250 words, concise and engaging for social media"
		styleReq = "Keep it punchy and social-media friendly"
	}

	return fmt.Sprintf(`Please generate a %s format newsletter about the following upcoming tech and investment events.

Output Requirements:
%s
- Structure:
  1. Compelling headline
  2. Brief intro highlighting key events
  3. Event details (grouped by city)
  4. Encouraging outro

Events Data:
%s

Additional Guidelines:
1. Focus on value proposition for founders/investors
2. Include specific dates and registration links
3. Maintain professional tone
4. %s`,
		strings.ToUpper(string(format)), lengthReq, desc.String(), styleReq)
}
