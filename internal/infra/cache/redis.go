package cache

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"property-feed-service/internal/domain"
)

// Redis implements domain.CacheStore on a shared Redis instance, for
// deployments where several service instances must see one cache.
// Keys are addressed as prefix:namespace:key.
type Redis struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	defaults  map[string]time.Duration
}

// NewRedis creates a Redis-backed store. keyPrefix namespaces all keys away
// from other applications sharing the instance.
func NewRedis(client *redis.Client, namespaces map[string]time.Duration, keyPrefix string, logger *zap.Logger) *Redis {
	defaults := make(map[string]time.Duration, len(namespaces))
	for ns, ttl := range namespaces {
		defaults[ns] = ttl
	}

	return &Redis{
		client:    client,
		logger:    logger,
		keyPrefix: keyPrefix,
		defaults:  defaults,
	}
}

func (r *Redis) buildKey(namespace, key string) string {
	return r.keyPrefix + ":" + namespace + ":" + key
}

func (r *Redis) checkNamespace(op, namespace string) error {
	if _, ok := r.defaults[namespace]; !ok {
		return &domain.CacheError{
			Op:        op,
			Namespace: namespace,
			Err:       domain.ErrUnknownNamespace,
		}
	}
	return nil
}

// Get returns the value for key, or nil when absent or expired. Store
// failures come back as *domain.CacheError, which callers treat as a miss.
func (r *Redis) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := r.checkNamespace("get", namespace); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.buildKey(namespace, key)).Bytes()
	if err == redis.Nil {
		// Key doesn't exist - this is not an error condition
		return nil, nil
	}
	if err != nil {
		r.logger.Error("cache get failed",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, &domain.CacheError{Op: "get", Namespace: namespace, Key: key, Err: err}
	}

	return data, nil
}

// Set stores value under key. A ttl <= 0 uses the namespace default.
func (r *Redis) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if err := r.checkNamespace("set", namespace); err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = r.defaults[namespace]
	}

	if err := r.client.Set(ctx, r.buildKey(namespace, key), value, ttl).Err(); err != nil {
		r.logger.Error("cache set failed",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)
		return &domain.CacheError{Op: "set", Namespace: namespace, Key: key, Err: err}
	}

	r.logger.Debug("cache set",
		zap.String("namespace", namespace),
		zap.String("key", key),
		zap.Int("bytes", len(value)),
		zap.Duration("ttl", ttl),
	)

	return nil
}

// Delete removes key, reporting whether a value was removed.
func (r *Redis) Delete(ctx context.Context, namespace, key string) (bool, error) {
	if err := r.checkNamespace("delete", namespace); err != nil {
		return false, err
	}

	n, err := r.client.Del(ctx, r.buildKey(namespace, key)).Result()
	if err != nil {
		return false, &domain.CacheError{Op: "delete", Namespace: namespace, Key: key, Err: err}
	}

	return n > 0, nil
}

// Exists reports whether key holds an unexpired value.
func (r *Redis) Exists(ctx context.Context, namespace, key string) (bool, error) {
	if err := r.checkNamespace("exists", namespace); err != nil {
		return false, err
	}

	n, err := r.client.Exists(ctx, r.buildKey(namespace, key)).Result()
	if err != nil {
		return false, &domain.CacheError{Op: "exists", Namespace: namespace, Key: key, Err: err}
	}

	return n > 0, nil
}

// TTL returns the remaining lifetime of key, or -1 when absent.
func (r *Redis) TTL(ctx context.Context, namespace, key string) (time.Duration, error) {
	if err := r.checkNamespace("ttl", namespace); err != nil {
		return -1, err
	}

	d, err := r.client.TTL(ctx, r.buildKey(namespace, key)).Result()
	if err != nil {
		return -1, &domain.CacheError{Op: "ttl", Namespace: namespace, Key: key, Err: err}
	}
	if d < 0 {
		// go-redis passes through the sentinel replies: -2 key missing,
		// -1 key without expiry.
		if d == -2 {
			return -1, nil
		}
		return 0, nil
	}

	return d, nil
}

// Flush removes every key in namespace. Uses SCAN so a large namespace
// doesn't block the instance.
func (r *Redis) Flush(ctx context.Context, namespace string) error {
	if err := r.checkNamespace("flush", namespace); err != nil {
		return err
	}

	pattern := r.keyPrefix + ":" + namespace + ":*"
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return &domain.CacheError{Op: "flush", Namespace: namespace, Err: err}
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return &domain.CacheError{Op: "flush", Namespace: namespace, Err: err}
		}
	}

	r.logger.Info("cache namespace flushed",
		zap.String("namespace", namespace),
		zap.Int("keys", len(keys)),
	)

	return nil
}

// Namespaces returns the configured namespace names, sorted.
func (r *Redis) Namespaces() []string {
	names := make([]string, 0, len(r.defaults))
	for ns := range r.defaults {
		names = append(names, ns)
	}
	sort.Strings(names)

	return names
}
