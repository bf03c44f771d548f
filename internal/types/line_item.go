package types

import "math"

// Line item categories.
const (
	LineItemCategoryBase    = "base"
	LineItemCategoryUpgrade = "upgrade"
	LineItemCategoryUpsell  = "upsell"
)

// FloatTolerance is the absolute tolerance used for all monetary arithmetic
// checks (line totals, subtotals).
const FloatTolerance = 1e-6

// QuoteLineItem is one priced entry within a quote. Immutable once built by
// the reconciliation step.
type QuoteLineItem struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
	Category    string  `json:"category"` // base|upgrade|upsell
	Reasoning   string  `json:"reasoning,omitempty"`
}

func ValidLineItemCategory(c string) bool {
	switch c {
	case LineItemCategoryBase, LineItemCategoryUpgrade, LineItemCategoryUpsell:
		return true
	}
	return false
}

// ArithmeticallyConsistent reports whether total matches quantity * unit
// price within FloatTolerance.
func (li QuoteLineItem) ArithmeticallyConsistent() bool {
	return math.Abs(li.Total-float64(li.Quantity)*li.UnitPrice) <= FloatTolerance
}
