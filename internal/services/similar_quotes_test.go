package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/speedupsharepoint/quote-ai-backend/internal/clients/pinecone"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
)

type fakePineconeClient struct {
	describeErr error
	queryErr    error
	matches     []pinecone.QueryMatch

	describeCalls int
	lastQuery     pinecone.QueryRequest
}

func (f *fakePineconeClient) DescribeIndex(_ context.Context, name string) (*pinecone.IndexDescription, error) {
	f.describeCalls++
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &pinecone.IndexDescription{Name: name, Host: "test-index.svc.pinecone.io"}, nil
}

func (f *fakePineconeClient) Query(_ context.Context, _ string, req pinecone.QueryRequest) (*pinecone.QueryResponse, error) {
	f.lastQuery = req
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &pinecone.QueryResponse{Matches: f.matches}, nil
}

func goodMatch() pinecone.QueryMatch {
	return pinecone.QueryMatch{
		ID:    "vec-1",
		Score: 0.92,
		Metadata: map[string]any{
			"quote_id":       "quote_acme_1690000000",
			"project_type":   "garage",
			"customer_notes": "garage shelving and bike storage",
			"total_amount":   1250.0,
			"won":            true,
			"square_footage": 380.0,
			"line_items":     `[{"sku":"SHELF-8FT","description":"shelf","quantity":3,"unit_price":150,"total":450,"category":"base"}]`,
		},
	}
}

func TestFindSimilarQueriesTenantNamespace(t *testing.T) {
	pc := &fakePineconeClient{matches: []pinecone.QueryMatch{goodMatch()}}
	svc := NewSimilarQuotesService(testLogger(t), &fakeAIClient{responses: []fakeAIResponse{{content: "unused"}}}, pc)

	quotes, err := svc.FindSimilar(context.Background(), testQuoteRequest())
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("quotes: want=1 got=%d", len(quotes))
	}

	q := quotes[0]
	if q.QuoteID != "quote_acme_1690000000" || q.TenantID != "acme" {
		t.Fatalf("hydrated quote: %+v", q)
	}
	if !q.Won || q.TotalAmount != 1250 {
		t.Fatalf("outcome fields: %+v", q)
	}
	if len(q.LineItems) != 1 || q.LineItems[0].SKU != "SHELF-8FT" {
		t.Fatalf("line items: %+v", q.LineItems)
	}

	if pc.lastQuery.Namespace != "acme" {
		t.Fatalf("namespace: got %q", pc.lastQuery.Namespace)
	}
	if pc.lastQuery.TopK != 50 {
		t.Fatalf("topK: want=50 got=%d", pc.lastQuery.TopK)
	}
	if !pc.lastQuery.IncludeMetadata {
		t.Fatalf("metadata must be requested")
	}
	if pc.lastQuery.Filter["project_type"] != "garage" {
		t.Fatalf("filter: %+v", pc.lastQuery.Filter)
	}
}

func TestFindSimilarSkipsMalformedMatches(t *testing.T) {
	missingID := goodMatch()
	delete(missingID.Metadata, "quote_id")

	badItems := goodMatch()
	badItems.Metadata["line_items"] = "{broken"

	noMeta := pinecone.QueryMatch{ID: "vec-x"}

	pc := &fakePineconeClient{matches: []pinecone.QueryMatch{missingID, badItems, noMeta, goodMatch()}}
	svc := NewSimilarQuotesService(testLogger(t), &fakeAIClient{responses: []fakeAIResponse{{content: "unused"}}}, pc)

	quotes, err := svc.FindSimilar(context.Background(), testQuoteRequest())
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("usable quotes: want=1 got=%d", len(quotes))
	}
}

func TestFindSimilarCachesIndexHost(t *testing.T) {
	pc := &fakePineconeClient{matches: []pinecone.QueryMatch{goodMatch()}}
	svc := NewSimilarQuotesService(testLogger(t), &fakeAIClient{responses: []fakeAIResponse{{content: "unused"}}}, pc)

	for i := 0; i < 3; i++ {
		if _, err := svc.FindSimilar(context.Background(), testQuoteRequest()); err != nil {
			t.Fatalf("FindSimilar #%d: %v", i, err)
		}
	}
	if pc.describeCalls != 1 {
		t.Fatalf("describe calls: want=1 got=%d", pc.describeCalls)
	}
}

func TestFindSimilarUpstreamFailures(t *testing.T) {
	pc := &fakePineconeClient{describeErr: errors.New("index not found")}
	svc := NewSimilarQuotesService(testLogger(t), &fakeAIClient{responses: []fakeAIResponse{{content: "unused"}}}, pc)
	if _, err := svc.FindSimilar(context.Background(), testQuoteRequest()); !apierr.Is(err, apierr.CodeUpstreamData) {
		t.Fatalf("describe failure: want upstream_data_error, got %v", err)
	}

	pc = &fakePineconeClient{queryErr: errors.New("query timeout")}
	svc = NewSimilarQuotesService(testLogger(t), &fakeAIClient{responses: []fakeAIResponse{{content: "unused"}}}, pc)
	if _, err := svc.FindSimilar(context.Background(), testQuoteRequest()); !apierr.Is(err, apierr.CodeUpstreamData) {
		t.Fatalf("query failure: want upstream_data_error, got %v", err)
	}
}

func TestEmbeddingTextIncludesRequestFields(t *testing.T) {
	req := testQuoteRequest()
	ceiling := 9.5
	req.CeilingHeight = &ceiling

	text := embeddingText(req)
	for _, want := range []string{"garage", "bikes", "400", "9.5", "standard"} {
		if !strings.Contains(text, want) {
			t.Fatalf("embedding text missing %q: %s", want, text)
		}
	}
}
