package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/speedupsharepoint/quote-ai-backend/internal/clients/redis"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/repos"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

const catalogCacheTTL = time.Hour

// CatalogService serves a tenant's catalog, read-through cached in Redis.
// Cache problems degrade to the database; only the database failing is an
// error the caller sees.
type CatalogService interface {
	GetByTenant(ctx context.Context, tenantID string) ([]types.CatalogItem, error)
}

type catalogService struct {
	log   *logger.Logger
	repo  repos.CatalogRepo
	cache redisclient.Cache // optional
}

func NewCatalogService(log *logger.Logger, repo repos.CatalogRepo, cache redisclient.Cache) CatalogService {
	return &catalogService{
		log:   log.With("service", "CatalogService"),
		repo:  repo,
		cache: cache,
	}
}

func catalogCacheKey(tenantID string) string {
	return "catalog:" + tenantID
}

func (s *catalogService) GetByTenant(ctx context.Context, tenantID string) ([]types.CatalogItem, error) {
	key := catalogCacheKey(tenantID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var items []types.CatalogItem
			if jsonErr := json.Unmarshal([]byte(cached), &items); jsonErr == nil {
				s.log.Debug("Catalog cache hit", "tenant_id", tenantID, "items", len(items))
				return items, nil
			}
			// A corrupt entry is treated as a miss; the write below replaces it.
			s.log.Warn("Catalog cache entry is corrupt, refetching", "tenant_id", tenantID)
		case errors.Is(err, redisclient.ErrCacheMiss):
		default:
			s.log.Warn("Catalog cache read failed, falling back to database", "tenant_id", tenantID, "error", err.Error())
		}
	}

	items, err := s.repo.GetByTenant(ctx, nil, tenantID)
	if err != nil {
		return nil, apierr.UpstreamData(fmt.Errorf("fetch catalog for tenant %s: %w", tenantID, err))
	}

	if s.cache != nil {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.cache.SetEX(ctx, key, string(raw), catalogCacheTTL); err != nil {
				s.log.Warn("Catalog cache write failed", "tenant_id", tenantID, "error", err.Error())
			}
		}
	}

	s.log.Info("Catalog fetched", "tenant_id", tenantID, "items", len(items))
	return items, nil
}
