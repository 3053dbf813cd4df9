package ingest

import "fmt"

// UnsupportedCityError reports a city with no known calendar mapping. It is
// raised before any HTTP request is made and is not retryable.
type UnsupportedCityError struct {
	City string
}

func (e *UnsupportedCityError) Error() string {
	return fmt.Sprintf("unsupported city: %q", e.City)
}

// SourceUnavailableError reports a transport failure or a non-2xx response
// from the upstream source. The adapters never retry; retry policy belongs to
// the caller.
type SourceUnavailableError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("source %s unavailable: unexpected status code %d", e.Source, e.StatusCode)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// IngestionError wraps any adapter failure raised through the facade,
// preserving the original cause for errors.As / errors.Is.
type IngestionError struct {
	Source string
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion via %s failed: %v", e.Source, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
