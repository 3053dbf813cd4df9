// Package cli implements the lumaletter command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jpineda/lumaletter/internal/config"
	"github.com/jpineda/lumaletter/internal/event"
	"github.com/jpineda/lumaletter/internal/ingest"
	"github.com/jpineda/lumaletter/internal/newsletter"
)

var (
	flagConfig   string
	flagCity     string
	flagCategory string
	flagSource   string
	flagFormat   string
	flagPreset   string
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lumaletter",
		Short: "Discover upcoming tech events and draft newsletter copy",
		Long: `Fetches upcoming tech and investment events for a city and category from
Luma, normalizes them into one canonical record, and optionally feeds them to
an LLM to draft newsletter copy.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (toml)")
	root.PersistentFlags().StringVar(&flagCity, "city", "", "City to search (e.g. NYC, Boston)")
	root.PersistentFlags().StringVar(&flagCategory, "category", "Tech", "Event category (e.g. Tech, Web3)")
	root.PersistentFlags().StringVar(&flagSource, "source", "", "Source adapter: rest or scrape (default from config)")

	root.AddCommand(newFetchCmd(), newNewsletterCmd())
	return root
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch canonical events and print them",
		RunE:  runFetch,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

func newNewsletterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Fetch events and generate newsletter copy",
		RunE:  runNewsletter,
	}
	cmd.Flags().StringVar(&flagPreset, "preset", "email", "Output preset: email or linkedin")
	return cmd
}

// setup loads config and builds the ingestion facade shared by all commands.
func setup() (config.Config, *ingest.Ingestor, zerolog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, nil, zerolog.Logger{}, fmt.Errorf("loading config: %w", err)
	}
	if flagSource != "" {
		cfg.Ingest.Source = flagSource
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)

	ing, err := ingest.NewFromConfig(cfg.Ingest, logger)
	if err != nil {
		return config.Config{}, nil, zerolog.Logger{}, err
	}
	return cfg, ing, logger, nil
}

func requireCity() error {
	if strings.TrimSpace(flagCity) == "" {
		return fmt.Errorf("--city is required")
	}
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := requireCity(); err != nil {
		return err
	}

	_, ing, _, err := setup()
	if err != nil {
		return err
	}

	events, err := ing.Fetch(cmd.Context(), flagCity, flagCategory)
	if err != nil {
		return err
	}

	switch flagFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	case "text":
		printEvents(cmd, events)
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
}

func printEvents(cmd *cobra.Command, events []event.Event) {
	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No upcoming events found.")
		return
	}

	fmt.Fprintf(out, "Found %d event(s):\n\n", len(events))
	for _, evt := range events {
		kind := "in-person"
		if evt.IsVirtual {
			kind = "online"
		}
		fmt.Fprintf(out, "  %s\n", evt.Title)
		fmt.Fprintf(out, "    %s • %s (%s)\n", evt.StartTime.Format("Mon Jan 2, 2006 15:04 MST"), evt.Location.Venue, kind)
		fmt.Fprintf(out, "    %s\n\n", evt.URL)
	}
}

func runNewsletter(cmd *cobra.Command, args []string) error {
	if err := requireCity(); err != nil {
		return err
	}

	format, err := newsletter.ParseFormat(flagPreset)
	if err != nil {
		return err
	}

	cfg, ing, logger, err := setup()
	if err != nil {
		return err
	}

	client, err := newsletter.NewOpenAIClient(cfg.AI, logger)
	if err != nil {
		return err
	}

	events, err := ing.Fetch(cmd.Context(), flagCity, flagCategory)
	if err != nil {
		return err
	}

	content, err := newsletter.NewRenderer(client, logger).Render(cmd.Context(), events, format)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}
