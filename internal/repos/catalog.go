package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

type CatalogRepo interface {
	GetByTenant(ctx context.Context, tx *gorm.DB, tenantID string) ([]types.CatalogItem, error)
	Create(ctx context.Context, tx *gorm.DB, items []*types.CatalogItem) ([]*types.CatalogItem, error)
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{db: db, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) GetByTenant(ctx context.Context, tx *gorm.DB, tenantID string) ([]types.CatalogItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.CatalogItem
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sku").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *catalogRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.CatalogItem) ([]*types.CatalogItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return []*types.CatalogItem{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
