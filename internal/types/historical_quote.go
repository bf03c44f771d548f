package types

import "time"

// HistoricalQuote is a closed past quote returned by the similarity index.
// Read-only prompt context; never persisted or mutated by this service.
type HistoricalQuote struct {
	QuoteID         string          `json:"quote_id"`
	TenantID        string          `json:"tenant_id"`
	ProjectType     ProjectType     `json:"project_type"`
	CustomerNotes   string          `json:"customer_notes"`
	SquareFootage   *float64        `json:"square_footage,omitempty"`
	LineItems       []QuoteLineItem `json:"line_items"`
	TotalAmount     float64         `json:"total_amount"`
	Won             bool            `json:"won"`
	TimeToCloseDays *int            `json:"time_to_close_days,omitempty"`
	SalesRepNotes   string          `json:"sales_rep_notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
