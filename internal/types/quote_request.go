package types

import (
	"strings"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
)

// QuoteRequest is the inbound body shared by all four generation endpoints.
type QuoteRequest struct {
	TenantID        string         `json:"tenant_id"`
	CustomerID      string         `json:"customer_id,omitempty"`
	ProjectType     ProjectType    `json:"project_type"`
	CustomerNotes   string         `json:"customer_notes"`
	SquareFootage   *float64       `json:"square_footage,omitempty"`
	CeilingHeight   *float64       `json:"ceiling_height,omitempty"`
	BudgetRange     string         `json:"budget_range,omitempty"` // budget|standard|premium
	SitePhotos      []string       `json:"site_photos,omitempty"`  // base64 blobs
	CustomerContext map[string]any `json:"customer_context,omitempty"`
}

func (r QuoteRequest) Validate() error {
	if strings.TrimSpace(r.TenantID) == "" {
		return apierr.Validationf("tenant_id is required")
	}
	if !r.ProjectType.Valid() {
		return apierr.Validationf("project_type %q is not supported", r.ProjectType)
	}
	if strings.TrimSpace(r.CustomerNotes) == "" {
		return apierr.Validationf("customer_notes is required")
	}
	if r.SquareFootage != nil && *r.SquareFootage <= 0 {
		return apierr.Validationf("square_footage must be > 0")
	}
	if r.CeilingHeight != nil && *r.CeilingHeight <= 0 {
		return apierr.Validationf("ceiling_height must be > 0")
	}
	return nil
}
