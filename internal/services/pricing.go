package services

import (
	"context"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/repos"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

// PricingService resolves the pricing rules for a tenant. Pricing rules are
// advisory prompt context, so a missing row or an unreachable database both
// degrade to the default policy rather than failing the request.
type PricingService interface {
	GetByTenant(ctx context.Context, tenantID string) types.PricingRule
}

type pricingService struct {
	log  *logger.Logger
	repo repos.PricingRuleRepo
}

func NewPricingService(log *logger.Logger, repo repos.PricingRuleRepo) PricingService {
	return &pricingService{
		log:  log.With("service", "PricingService"),
		repo: repo,
	}
}

func (s *pricingService) GetByTenant(ctx context.Context, tenantID string) types.PricingRule {
	rule, err := s.repo.GetByTenant(ctx, nil, tenantID)
	if err != nil {
		s.log.Warn("Pricing rule fetch failed, using defaults", "tenant_id", tenantID, "error", err.Error())
		return types.DefaultPricingRule(tenantID)
	}
	if rule == nil {
		s.log.Debug("No pricing rule for tenant, using defaults", "tenant_id", tenantID)
		return types.DefaultPricingRule(tenantID)
	}
	return *rule
}
