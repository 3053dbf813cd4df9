// Package ingest acquires upcoming events from Luma and normalizes them into
// the canonical event model.
//
// Two interchangeable adapters implement the Source interface: Client talks
// to the documented REST API, Scraper parses the public search results page.
// Both share the same degradation policy: one malformed item is logged and
// skipped, never aborting the batch, and a transport or HTTP failure
// surfaces immediately as a SourceUnavailableError with no internal retry.
// The Ingestor facade selects an adapter from configuration and wraps any
// adapter failure in an IngestionError that preserves the original cause.
//
// The scrape adapter is built around ordered fallback chains, both for
// locating event cards and for extracting each field, because the site's
// markup is not contractually stable. See extract.go.
package ingest
