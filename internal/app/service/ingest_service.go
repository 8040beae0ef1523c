// Package service provides application use cases.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"property-feed-service/internal/domain"
	"property-feed-service/internal/feed"
)

// Cache namespaces owned by the ingestion pipeline.
const (
	NamespaceProperties = "properties"
	NamespaceImages     = "images"

	// SnapshotKey holds the full normalized feed snapshot. The snapshot is
	// replaced with a single Set, so readers never observe a partial batch.
	SnapshotKey = "snapshot"
)

// IngestService runs one full refresh cycle: fetch the latest feed file,
// decode it, normalize it and replace the cached snapshot.
type IngestService struct {
	transport domain.FeedTransport
	parser    *feed.Parser
	cache     domain.CacheStore
	logger    *zap.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(
	transport domain.FeedTransport,
	parser *feed.Parser,
	cache domain.CacheStore,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		transport: transport,
		parser:    parser,
		cache:     cache,
		logger:    logger,
	}
}

// RefreshResult holds the outcome of one successful refresh cycle.
type RefreshResult struct {
	Feed     string
	Count    int
	Duration time.Duration
}

// Refresh executes the full cycle. On any failure it returns without
// touching the cache: a stale snapshot is preferred over an empty one.
func (s *IngestService) Refresh(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()

	file, err := s.transport.FetchLatest(ctx)
	if err != nil {
		s.logger.Warn("feed fetch failed", zap.Error(err))
		return nil, err
	}

	format, err := feed.DetectFormat(file.Name)
	if err != nil {
		return nil, err
	}

	tree, err := s.parser.Decode(file.Data, format)
	if err != nil {
		s.logger.Warn("feed decode failed",
			zap.String("feed", file.Name),
			zap.Error(err),
		)
		return nil, err
	}

	props := s.parser.Normalize(tree)

	data, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := s.cache.Set(ctx, NamespaceProperties, SnapshotKey, data, 0); err != nil {
		return nil, err
	}

	result := &RefreshResult{
		Feed:     file.Name,
		Count:    len(props),
		Duration: time.Since(start),
	}

	s.logger.Info("refresh cycle completed",
		zap.String("feed", result.Feed),
		zap.Int("count", result.Count),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// Snapshot returns the currently cached property snapshot, or nil when the
// cache is cold. Cache failures degrade to a miss.
func (s *IngestService) Snapshot(ctx context.Context) ([]domain.Property, error) {
	data, err := s.cache.Get(ctx, NamespaceProperties, SnapshotKey)
	if err != nil {
		s.logger.Warn("snapshot read degraded to miss", zap.Error(err))
		return nil, nil
	}
	if data == nil {
		return nil, nil
	}

	var props []domain.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	return props, nil
}
