package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

type PricingRuleRepo interface {
	// GetByTenant returns nil (no error) when the tenant has no rule row.
	GetByTenant(ctx context.Context, tx *gorm.DB, tenantID string) (*types.PricingRule, error)
	Upsert(ctx context.Context, tx *gorm.DB, rule *types.PricingRule) (*types.PricingRule, error)
}

type pricingRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPricingRuleRepo(db *gorm.DB, baseLog *logger.Logger) PricingRuleRepo {
	return &pricingRuleRepo{db: db, log: baseLog.With("repo", "PricingRuleRepo")}
}

func (r *pricingRuleRepo) GetByTenant(ctx context.Context, tx *gorm.DB, tenantID string) (*types.PricingRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rule types.PricingRule
	err := transaction.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *pricingRuleRepo) Upsert(ctx context.Context, tx *gorm.DB, rule *types.PricingRule) (*types.PricingRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("tenant_id = ?", rule.TenantID).
		Assign(rule).
		FirstOrCreate(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}
