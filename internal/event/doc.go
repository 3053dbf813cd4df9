// Package event defines the canonical event record shared by all source
// adapters and consumed by the newsletter renderer.
//
// Construction through New is the validation boundary: a record missing its
// title, start time, or URL is rejected with a ValidationError, while every
// other absent field degrades to a documented default so partial source data
// still yields a usable record. Timestamps are normalized to UTC and the
// virtual-event flag is derived from the venue string rather than trusted
// from the source.
package event
