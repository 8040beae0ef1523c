// Package cache provides the namespaced, TTL-bounded cache store backing
// the read path. Two backends implement domain.CacheStore: an in-process
// store for single-instance deployments and a Redis store for fleets.
// Namespaces and their default TTLs are fixed at construction; the
// namespace is part of internal addressing, so keys can never collide
// across namespaces.
package cache

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"property-feed-service/internal/domain"
)

// cleanupInterval is how often expired entries are evicted from memory.
const cleanupInterval = time.Minute

// Memory implements domain.CacheStore with one go-cache instance per
// namespace. All operations are synchronous map operations; a miss or an
// expired entry is a normal nil return, never an error.
type Memory struct {
	logger *zap.Logger
	spaces map[string]*gocache.Cache
}

// NewMemory creates an in-process store with the given namespaces and
// their default TTLs.
func NewMemory(namespaces map[string]time.Duration, logger *zap.Logger) *Memory {
	spaces := make(map[string]*gocache.Cache, len(namespaces))
	for ns, ttl := range namespaces {
		spaces[ns] = gocache.New(ttl, cleanupInterval)
	}

	return &Memory{
		logger: logger,
		spaces: spaces,
	}
}

func (m *Memory) space(op, namespace string) (*gocache.Cache, error) {
	c, ok := m.spaces[namespace]
	if !ok {
		return nil, &domain.CacheError{
			Op:        op,
			Namespace: namespace,
			Err:       domain.ErrUnknownNamespace,
		}
	}
	return c, nil
}

// Get returns the value for key, or nil when absent or expired.
func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, error) {
	c, err := m.space("get", namespace)
	if err != nil {
		return nil, err
	}

	v, ok := c.Get(key)
	if !ok {
		return nil, nil
	}

	data, _ := v.([]byte)
	m.logger.Debug("cache hit",
		zap.String("namespace", namespace),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)

	return data, nil
}

// Set stores value under key. A ttl <= 0 uses the namespace default.
func (m *Memory) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	c, err := m.space("set", namespace)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.Set(key, value, ttl)

	m.logger.Debug("cache set",
		zap.String("namespace", namespace),
		zap.String("key", key),
		zap.Int("bytes", len(value)),
		zap.Duration("ttl", ttl),
	)

	return nil
}

// Delete removes key, reporting whether a value was present.
func (m *Memory) Delete(_ context.Context, namespace, key string) (bool, error) {
	c, err := m.space("delete", namespace)
	if err != nil {
		return false, err
	}

	_, existed := c.Get(key)
	c.Delete(key)

	return existed, nil
}

// Exists reports whether key holds an unexpired value.
func (m *Memory) Exists(_ context.Context, namespace, key string) (bool, error) {
	c, err := m.space("exists", namespace)
	if err != nil {
		return false, err
	}

	_, ok := c.Get(key)
	return ok, nil
}

// TTL returns the remaining lifetime of key, or -1 when absent.
func (m *Memory) TTL(_ context.Context, namespace, key string) (time.Duration, error) {
	c, err := m.space("ttl", namespace)
	if err != nil {
		return -1, err
	}

	_, exp, ok := c.GetWithExpiration(key)
	if !ok {
		return -1, nil
	}
	if exp.IsZero() {
		return 0, nil
	}

	return time.Until(exp), nil
}

// Flush removes every key in namespace only.
func (m *Memory) Flush(_ context.Context, namespace string) error {
	c, err := m.space("flush", namespace)
	if err != nil {
		return err
	}

	c.Flush()
	m.logger.Info("cache namespace flushed", zap.String("namespace", namespace))

	return nil
}

// Namespaces returns the configured namespace names, sorted.
func (m *Memory) Namespaces() []string {
	names := make([]string, 0, len(m.spaces))
	for ns := range m.spaces {
		names = append(names, ns)
	}
	sort.Strings(names)

	return names
}
