package types

import (
	"testing"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
)

func TestQuoteRequestValidate(t *testing.T) {
	sqft := 400.0
	negative := -10.0

	valid := QuoteRequest{
		TenantID:      "acme",
		ProjectType:   ProjectTypeCloset,
		CustomerNotes: "walk-in closet",
		SquareFootage: &sqft,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*QuoteRequest)
	}{
		{"empty tenant", func(r *QuoteRequest) { r.TenantID = "  " }},
		{"unknown project type", func(r *QuoteRequest) { r.ProjectType = "spaceship" }},
		{"empty notes", func(r *QuoteRequest) { r.CustomerNotes = "" }},
		{"negative square footage", func(r *QuoteRequest) { r.SquareFootage = &negative }},
		{"negative ceiling height", func(r *QuoteRequest) { r.CeilingHeight = &negative }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := req.Validate()
			if !apierr.Is(err, apierr.CodeValidation) {
				t.Fatalf("want validation_error, got %v", err)
			}
		})
	}
}

func TestLineItemArithmeticallyConsistent(t *testing.T) {
	li := QuoteLineItem{Quantity: 3, UnitPrice: 149.99, Total: 449.97}
	if !li.ArithmeticallyConsistent() {
		t.Fatalf("consistent item rejected: %+v", li)
	}

	li.Total = 449.99
	if li.ArithmeticallyConsistent() {
		t.Fatalf("inconsistent item accepted: %+v", li)
	}
}

func TestProjectTypeValid(t *testing.T) {
	for _, pt := range []ProjectType{ProjectTypeGarage, ProjectTypeCloset, ProjectTypePantry, ProjectTypeMudroom, ProjectTypeHomeOffice} {
		if !pt.Valid() {
			t.Fatalf("%s should be valid", pt)
		}
	}
	if ProjectType("bathroom").Valid() {
		t.Fatalf("bathroom is not a supported project type")
	}
}
