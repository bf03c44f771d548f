package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

type fakePricingRuleRepo struct {
	rule *types.PricingRule
	err  error
}

func (f *fakePricingRuleRepo) GetByTenant(_ context.Context, _ *gorm.DB, _ string) (*types.PricingRule, error) {
	return f.rule, f.err
}

func (f *fakePricingRuleRepo) Upsert(_ context.Context, _ *gorm.DB, rule *types.PricingRule) (*types.PricingRule, error) {
	return rule, nil
}

func TestPricingServiceReturnsTenantRule(t *testing.T) {
	rule := types.DefaultPricingRule("acme")
	rule.TargetMarginPercent = 55
	svc := NewPricingService(testLogger(t), &fakePricingRuleRepo{rule: &rule})

	got := svc.GetByTenant(context.Background(), "acme")
	if got.TargetMarginPercent != 55 {
		t.Fatalf("target margin: want=55 got=%v", got.TargetMarginPercent)
	}
}

func TestPricingServiceDefaultsWhenAbsent(t *testing.T) {
	svc := NewPricingService(testLogger(t), &fakePricingRuleRepo{})

	got := svc.GetByTenant(context.Background(), "acme")
	if got.TenantID != "acme" {
		t.Fatalf("tenant: got %q", got.TenantID)
	}
	if got.TargetMarginPercent != 40 || got.MinimumMarginPercent != 25 {
		t.Fatalf("margins: %+v", got)
	}
	if got.VolumeDiscountThreshold != 10 || got.VolumeDiscountPercent != 5 {
		t.Fatalf("volume discount: %+v", got)
	}
	if got.SeasonalMultiplier != 1.0 {
		t.Fatalf("seasonal multiplier: %v", got.SeasonalMultiplier)
	}
}

func TestPricingServiceDefaultsOnError(t *testing.T) {
	svc := NewPricingService(testLogger(t), &fakePricingRuleRepo{err: errors.New("db offline")})

	got := svc.GetByTenant(context.Background(), "acme")
	if got.TargetMarginPercent != 40 {
		t.Fatalf("expected defaults on repo error, got %+v", got)
	}
}
