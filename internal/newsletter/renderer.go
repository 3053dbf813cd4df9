// Package newsletter turns a batch of canonical events into newsletter copy
// via one LLM completion call. Two output presets exist: email and linkedin.
package newsletter

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jpineda/lumaletter/internal/event"
)

// Renderer produces newsletter copy from canonical events.
type Renderer struct {
	client LLMClient
	logger zerolog.Logger
}

// NewRenderer creates a Renderer around an LLM client.
func NewRenderer(client LLMClient, logger zerolog.Logger) *Renderer {
	return &Renderer{
		client: client,
		logger: logger.With().Str("component", "newsletter").Logger(),
	}
}

// ParseFormat validates an output preset name. Empty defaults to email.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatEmail, "":
		return FormatEmail, nil
	case FormatLinkedIn:
		return FormatLinkedIn, nil
	default:
		return "", fmt.Errorf("unsupported format: %q (must be 'email' or 'linkedin')", s)
	}
}

// Render generates newsletter copy for the given events and preset.
func (r *Renderer) Render(ctx context.Context, events []event.Event, format Format) (string, error) {
	text, err := r.client.Complete(ctx, CompleteRequest{
		Prompt:       buildPrompt(events, format),
		SystemPrompt: systemPrompt,
		MaxTokens:    maxTokensFor(format),
		Temperature:  0.7,
	})
	if err != nil {
		return "", fmt.Errorf("generating %s newsletter: %w", format, err)
	}

	r.logger.Info().
		Str("format", string(format)).
		Int("events", len(events)).
		Msg("generated newsletter content")

	return strings.TrimSpace(text), nil
}
