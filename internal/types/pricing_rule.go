package types

import (
	"time"

	"github.com/google/uuid"
)

// Pricing defaults applied when a tenant has no configured rule row.
const (
	DefaultTargetMarginPercent     = 40.0
	DefaultMinimumMarginPercent    = 25.0
	DefaultVolumeDiscountThreshold = 10
	DefaultVolumeDiscountPercent   = 5.0
	DefaultSeasonalMultiplier      = 1.0
	DefaultTaxRate                 = 0.0825
	DefaultCostRatio               = 0.6
)

// PricingRule holds a tenant's pricing policy. TaxRate and CostRatio are
// tenant-level overrides of the service-wide defaults.
type PricingRule struct {
	ID                      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID                string    `gorm:"column:tenant_id;not null;uniqueIndex" json:"tenant_id"`
	TargetMarginPercent     float64   `gorm:"column:target_margin_percent;not null;default:40" json:"target_margin_percent"`
	MinimumMarginPercent    float64   `gorm:"column:minimum_margin_percent;not null;default:25" json:"minimum_margin_percent"`
	VolumeDiscountThreshold int       `gorm:"column:volume_discount_threshold;not null;default:10" json:"volume_discount_threshold"`
	VolumeDiscountPercent   float64   `gorm:"column:volume_discount_percent;not null;default:5" json:"volume_discount_percent"`
	SeasonalMultiplier      float64   `gorm:"column:seasonal_multiplier;not null;default:1" json:"seasonal_multiplier"`
	TaxRate                 float64   `gorm:"column:tax_rate;not null;default:0.0825" json:"tax_rate"`
	CostRatio               float64   `gorm:"column:cost_ratio;not null;default:0.6" json:"cost_ratio"`
	CreatedAt               time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt               time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (PricingRule) TableName() string { return "pricing_rule" }

// DefaultPricingRule is the fallback policy for tenants with no row.
func DefaultPricingRule(tenantID string) PricingRule {
	return PricingRule{
		TenantID:                tenantID,
		TargetMarginPercent:     DefaultTargetMarginPercent,
		MinimumMarginPercent:    DefaultMinimumMarginPercent,
		VolumeDiscountThreshold: DefaultVolumeDiscountThreshold,
		VolumeDiscountPercent:   DefaultVolumeDiscountPercent,
		SeasonalMultiplier:      DefaultSeasonalMultiplier,
		TaxRate:                 DefaultTaxRate,
		CostRatio:               DefaultCostRatio,
	}
}
