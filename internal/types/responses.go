package types

import "time"

// QuoteResponse is returned by POST /ai/suggest-quote. All monetary fields
// are derived locally by the reconciliation step; the model is never trusted
// for arithmetic.
type QuoteResponse struct {
	QuoteID                string          `json:"quote_id"`
	TenantID               string          `json:"tenant_id"`
	LineItems              []QuoteLineItem `json:"line_items"`
	Subtotal               float64         `json:"subtotal"`
	Tax                    float64         `json:"tax"`
	Total                  float64         `json:"total"`
	EstimatedMarginPercent float64         `json:"estimated_margin_percent"`
	Reasoning              string          `json:"reasoning"`
	UpsellSuggestions      []QuoteLineItem `json:"upsell_suggestions"`
	SimilarQuotesUsed      int             `json:"similar_quotes_used"`
	ConfidenceScore        float64         `json:"confidence_score"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// UpsellSuggestionResponse is returned by POST /ai/suggest-upsells.
type UpsellSuggestionResponse struct {
	TenantID        string          `json:"tenant_id"`
	ProjectType     ProjectType     `json:"project_type"`
	UpsellItems     []QuoteLineItem `json:"upsell_items"`
	Reasoning       string          `json:"reasoning,omitempty"`
	ConfidenceScore *float64        `json:"confidence_score,omitempty"`
}

// ExplainQuoteResponse is returned by POST /ai/explain-quote.
type ExplainQuoteResponse struct {
	Explanation string    `json:"explanation"`
	GeneratedAt time.Time `json:"generated_at"`
}

// OptimizedPricingResponse is returned by POST /ai/optimize-pricing.
type OptimizedPricingResponse struct {
	RecommendedPrice    float64        `json:"recommended_price"`
	TargetMarginPercent float64        `json:"target_margin_percent"`
	Reasoning           string         `json:"reasoning"`
	Adjustments         map[string]any `json:"adjustments,omitempty"`
	ConfidenceScore     *float64       `json:"confidence_score,omitempty"`
	GeneratedAt         time.Time      `json:"generated_at"`
}
