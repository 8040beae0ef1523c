package domain

import (
	"context"
	"time"
)

// FeedInfo describes one file visible at the feed endpoint.
type FeedInfo struct {
	Name       string
	ModifiedAt time.Time
}

// FeedFile is a retrieved feed snapshot.
type FeedFile struct {
	Name string
	Data []byte
}

// FeedTransport retrieves feed files from the remote file server. Each call
// opens a short-lived connection; no connection is kept between calls.
// Transport does not retry; callers decide retry policy.
// Implementations: internal/infra/ftpfeed
type FeedTransport interface {
	// List enumerates available feed files sorted by modification time
	// descending, ties broken by lexical filename order. Fails with
	// *TransportError on connection/auth failure or an empty listing.
	List(ctx context.Context) ([]FeedInfo, error)

	// Fetch retrieves the named feed file. Fails with *TransportError if
	// the resource no longer exists or the transfer is interrupted.
	Fetch(ctx context.Context, name string) (*FeedFile, error)

	// FetchLatest lists, picks the most recent entry and fetches it.
	FetchLatest(ctx context.Context) (*FeedFile, error)
}

// CacheStore is a namespaced key/value store with per-namespace default TTL.
// Namespaces are fixed at construction; namespace is part of the store's
// internal addressing, so cross-namespace key collisions are impossible.
// A miss (including expiry) is a normal nil return, never an error.
// Implementations: internal/infra/cache (memory, redis)
type CacheStore interface {
	// Get returns the value for key, or nil if absent or expired.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores value under key. A ttl <= 0 uses the namespace default.
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error

	// Delete removes key and reports whether a value was removed.
	Delete(ctx context.Context, namespace, key string) (bool, error)

	// Exists reports whether key holds an unexpired value.
	Exists(ctx context.Context, namespace, key string) (bool, error)

	// TTL returns the remaining lifetime of key, or -1 if absent.
	TTL(ctx context.Context, namespace, key string) (time.Duration, error)

	// Flush removes every key in namespace, leaving other namespaces intact.
	Flush(ctx context.Context, namespace string) error

	// Namespaces returns the namespace names configured at construction.
	Namespaces() []string
}

// PartnerAPI is the secondary remote source used by the on-demand read path
// when a property is not in the cached feed snapshot.
// Implementations: internal/infra/partner
type PartnerAPI interface {
	// GetProperty fetches a single property by its source identifier.
	// Returns ErrNotFound if the partner has no such listing.
	GetProperty(ctx context.Context, id string) (*Property, error)

	// HealthCheck verifies the partner API is accessible.
	HealthCheck(ctx context.Context) error
}
