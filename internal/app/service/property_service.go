package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"property-feed-service/internal/domain"
	"property-feed-service/pkg/coalesce"
)

// PropertyService is the on-demand read path. Lookups are served from the
// cache; on a miss the expensive upstream work is coalesced so N concurrent
// callers for the same key trigger exactly one fetch.
type PropertyService struct {
	ingest  *IngestService
	cache   domain.CacheStore
	partner domain.PartnerAPI
	logger  *zap.Logger

	snapshots coalesce.Group[[]domain.Property]
	lookups   coalesce.Group[*domain.Property]
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(
	ingest *IngestService,
	cache domain.CacheStore,
	partner domain.PartnerAPI,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{
		ingest:  ingest,
		cache:   cache,
		partner: partner,
		logger:  logger,
	}
}

// List returns the current property snapshot. A cold cache triggers one
// coalesced re-ingestion; if that also fails the caller gets an explicit
// empty list, never an error page. Staleness and emptiness both beat a
// broken read path.
func (s *PropertyService) List(ctx context.Context) []domain.Property {
	props, err := s.ingest.Snapshot(ctx)
	if err != nil {
		s.logger.Error("snapshot unreadable", zap.Error(err))
		return []domain.Property{}
	}
	if props != nil {
		return props
	}

	// Cold cache: every concurrent reader shares one refresh.
	props, shared, err := s.snapshots.Do(ctx, "snapshot:refresh", func(ctx context.Context) ([]domain.Property, error) {
		if _, err := s.ingest.Refresh(ctx); err != nil {
			return nil, err
		}
		return s.ingest.Snapshot(ctx)
	})
	if err != nil {
		s.logger.Warn("cold-cache refresh failed, serving empty list",
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		return []domain.Property{}
	}
	if props == nil {
		props = []domain.Property{}
	}

	return props
}

// GetByID returns one property. Sources are tried in order: cached feed
// snapshot, per-id cache entry, then a coalesced partner API call whose
// result is cached. When the id genuinely doesn't exist anywhere the
// caller gets domain.ErrNotFound; when every upstream merely failed the
// caller gets a clearly-flagged fallback record instead of an error.
func (s *PropertyService) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	if props, err := s.ingest.Snapshot(ctx); err == nil {
		for i := range props {
			if props[i].ID == id {
				return &props[i], nil
			}
		}
	}

	if data, err := s.cache.Get(ctx, NamespaceProperties, "id:"+id); err == nil && data != nil {
		var prop domain.Property
		if err := json.Unmarshal(data, &prop); err == nil {
			return &prop, nil
		}
	}

	prop, _, err := s.lookups.Do(ctx, "property:"+id, func(ctx context.Context) (*domain.Property, error) {
		p, err := s.partner.GetProperty(ctx, id)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(p); err == nil {
			// Cache failures just mean the next lookup pays again.
			if err := s.cache.Set(ctx, NamespaceProperties, "id:"+id, data, 0); err != nil {
				s.logger.Warn("per-id cache set failed", zap.String("id", id), zap.Error(err))
			}
		}
		return p, nil
	})
	if err == nil {
		return prop, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}

	s.logger.Warn("all upstream sources failed, serving fallback record",
		zap.String("id", id),
		zap.Error(err),
	)

	return domain.NewFallbackProperty(id), nil
}

// Images returns the image list for a property, cached in its own
// namespace with a longer TTL than the listing snapshot.
func (s *PropertyService) Images(ctx context.Context, id string) ([]domain.Image, error) {
	if data, err := s.cache.Get(ctx, NamespaceImages, id); err == nil && data != nil {
		var images []domain.Image
		if err := json.Unmarshal(data, &images); err == nil {
			return images, nil
		}
	}

	prop, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images := prop.Images
	if images == nil {
		images = []domain.Image{}
	}

	if !prop.IsFallback() {
		if data, err := json.Marshal(images); err == nil {
			if err := s.cache.Set(ctx, NamespaceImages, id, data, 0); err != nil {
				s.logger.Warn("image cache set failed", zap.String("id", id), zap.Error(err))
			}
		}
	}

	return images, nil
}
