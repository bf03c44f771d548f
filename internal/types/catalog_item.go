package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CatalogItem is a tenant's sellable item. Sourced from Postgres (with a
// Redis cache in front); read-only within the generation core.
type CatalogItem struct {
	ID                   uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"catalog_item_id"`
	TenantID             string                      `gorm:"column:tenant_id;not null;index:idx_catalog_tenant_sku,unique,priority:1" json:"tenant_id"`
	SKU                  string                      `gorm:"column:sku;not null;index:idx_catalog_tenant_sku,unique,priority:2" json:"sku"`
	Name                 string                      `gorm:"column:name;not null" json:"name"`
	Description          string                      `gorm:"column:description" json:"description"`
	BasePrice            float64                     `gorm:"column:base_price;not null" json:"base_price"`
	Category             string                      `gorm:"column:category;not null;index" json:"category"`
	TypicalQuantityRange string                      `gorm:"column:typical_quantity_range" json:"typical_quantity_range,omitempty"` // "1-5", "10-20"
	PairsWellWith        datatypes.JSONSlice[string] `gorm:"type:jsonb;column:pairs_well_with" json:"pairs_well_with,omitempty"`
	CreatedAt            time.Time                   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time                   `gorm:"not null;default:now()" json:"updated_at"`
}

func (CatalogItem) TableName() string { return "catalog_item" }
