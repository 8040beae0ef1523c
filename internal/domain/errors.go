package domain

import (
	"errors"
	"fmt"
)

// Transport failure reasons. Reasons are part of the error contract so
// callers can branch on them without string matching.
const (
	ReasonConnection = "connection failed"
	ReasonAuth       = "authentication rejected"
	ReasonTimeout    = "timeout"
	ReasonNoFeeds    = "no feeds available"
	ReasonVanished   = "resource vanished"
)

// TransportError reports a failure talking to the remote feed endpoint.
type TransportError struct {
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed transport: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("feed transport: %s", e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err with a transport failure reason.
func NewTransportError(reason string, err error) *TransportError {
	return &TransportError{Reason: reason, Err: err}
}

// ParseError reports malformed bytes for the declared wire format.
// It aborts the whole refresh cycle, unlike NormalizationError.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s feed: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NormalizationError reports a single record that could not be mapped to a
// Property. It is caught at the record level and the record dropped; it is
// never propagated to the batch caller.
type NormalizationError struct {
	Record string // best-effort record identifier for logging
	Err    error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizing record %q: %v", e.Record, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// CacheError reports a cache store failure. Callers treat it as a miss,
// never as a fatal condition. A plain miss is NOT a CacheError.
type CacheError struct {
	Op        string
	Namespace string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s/%s: %v", e.Op, e.Namespace, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// ErrRefreshRunning is returned when a refresh cycle is requested while one
// is already in progress. The new cycle is refused, not queued; callers log
// it rather than escalating.
var ErrRefreshRunning = errors.New("refresh cycle already running")

// ErrUnknownNamespace is returned for cache operations against a namespace
// that was not configured at construction.
var ErrUnknownNamespace = errors.New("unknown cache namespace")

// ErrNotFound is returned by lookups when no record with the requested
// identifier exists in any reachable source.
var ErrNotFound = errors.New("property not found")
