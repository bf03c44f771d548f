package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	redisclient "github.com/speedupsharepoint/quote-ai-backend/internal/clients/redis"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

type fakeCatalogRepo struct {
	items []types.CatalogItem
	err   error
	calls int
}

func (f *fakeCatalogRepo) GetByTenant(_ context.Context, _ *gorm.DB, _ string) ([]types.CatalogItem, error) {
	f.calls++
	return f.items, f.err
}

func (f *fakeCatalogRepo) Create(_ context.Context, _ *gorm.DB, items []*types.CatalogItem) ([]*types.CatalogItem, error) {
	return items, nil
}

type fakeCache struct {
	data    map[string]string
	getErr  error
	setErr  error
	lastTTL time.Duration
	sets    int
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", redisclient.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) SetEX(_ context.Context, key, value string, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.data == nil {
		f.data = map[string]string{}
	}
	f.data[key] = value
	f.lastTTL = ttl
	f.sets++
	return nil
}

func (f *fakeCache) Close() error { return nil }

func TestCatalogServiceCacheMissPopulatesCache(t *testing.T) {
	repo := &fakeCatalogRepo{items: testCatalog()}
	cache := &fakeCache{}
	svc := NewCatalogService(testLogger(t), repo, cache)

	items, err := svc.GetByTenant(context.Background(), "acme")
	if err != nil {
		t.Fatalf("GetByTenant: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items: want=3 got=%d", len(items))
	}
	if repo.calls != 1 {
		t.Fatalf("repo calls: want=1 got=%d", repo.calls)
	}
	if cache.sets != 1 {
		t.Fatalf("cache writes: want=1 got=%d", cache.sets)
	}
	if cache.lastTTL != time.Hour {
		t.Fatalf("cache TTL: want=1h got=%v", cache.lastTTL)
	}

	// Second read is served from the cache.
	if _, err := svc.GetByTenant(context.Background(), "acme"); err != nil {
		t.Fatalf("GetByTenant (cached): %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("repo calls after cache hit: want=1 got=%d", repo.calls)
	}
}

func TestCatalogServiceCorruptCacheFallsBack(t *testing.T) {
	repo := &fakeCatalogRepo{items: testCatalog()}
	cache := &fakeCache{data: map[string]string{"catalog:acme": "{not json"}}
	svc := NewCatalogService(testLogger(t), repo, cache)

	items, err := svc.GetByTenant(context.Background(), "acme")
	if err != nil {
		t.Fatalf("GetByTenant: %v", err)
	}
	if len(items) != 3 || repo.calls != 1 {
		t.Fatalf("expected database fallback, items=%d repo_calls=%d", len(items), repo.calls)
	}

	var replaced []types.CatalogItem
	if err := json.Unmarshal([]byte(cache.data["catalog:acme"]), &replaced); err != nil {
		t.Fatalf("corrupt entry was not replaced: %v", err)
	}
}

func TestCatalogServiceCacheErrorFallsBack(t *testing.T) {
	repo := &fakeCatalogRepo{items: testCatalog()}
	cache := &fakeCache{getErr: errors.New("redis down")}
	svc := NewCatalogService(testLogger(t), repo, cache)

	items, err := svc.GetByTenant(context.Background(), "acme")
	if err != nil {
		t.Fatalf("GetByTenant: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items: want=3 got=%d", len(items))
	}
}

func TestCatalogServiceDatabaseFailure(t *testing.T) {
	repo := &fakeCatalogRepo{err: errors.New("connection refused")}
	svc := NewCatalogService(testLogger(t), repo, nil)

	_, err := svc.GetByTenant(context.Background(), "acme")
	if !apierr.Is(err, apierr.CodeUpstreamData) {
		t.Fatalf("want upstream_data_error, got %v", err)
	}
}
