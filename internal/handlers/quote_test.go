package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/speedupsharepoint/quote-ai-backend/internal/handlers"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/server"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

type stubCatalogService struct {
	items []types.CatalogItem
	err   error
}

func (s *stubCatalogService) GetByTenant(_ context.Context, _ string) ([]types.CatalogItem, error) {
	return s.items, s.err
}

type stubPricingService struct {
	rule types.PricingRule
}

func (s *stubPricingService) GetByTenant(_ context.Context, tenantID string) types.PricingRule {
	if s.rule.TenantID == "" {
		return types.DefaultPricingRule(tenantID)
	}
	return s.rule
}

type stubSimilarQuotesService struct {
	quotes []types.HistoricalQuote
	err    error
}

func (s *stubSimilarQuotesService) FindSimilar(_ context.Context, _ types.QuoteRequest) ([]types.HistoricalQuote, error) {
	return s.quotes, s.err
}

type stubGenerator struct {
	quote   *types.QuoteResponse
	upsells *types.UpsellSuggestionResponse
	explain *types.ExplainQuoteResponse
	pricing *types.OptimizedPricingResponse
	err     error
}

func (s *stubGenerator) SuggestQuote(_ context.Context, _ types.QuoteRequest, _ []types.HistoricalQuote, _ []types.CatalogItem) (*types.QuoteResponse, error) {
	return s.quote, s.err
}

func (s *stubGenerator) SuggestUpsells(_ context.Context, _ types.QuoteRequest, _ []types.CatalogItem) (*types.UpsellSuggestionResponse, error) {
	return s.upsells, s.err
}

func (s *stubGenerator) ExplainQuote(_ context.Context, _ types.QuoteRequest) (*types.ExplainQuoteResponse, error) {
	return s.explain, s.err
}

func (s *stubGenerator) OptimizePricing(_ context.Context, _ types.QuoteRequest, _ *types.PricingRule) (*types.OptimizedPricingResponse, error) {
	return s.pricing, s.err
}

func newTestRouter(t *testing.T, gen *stubGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("debug")
	require.NoError(t, err)

	handler := handlers.NewQuoteHandler(
		log,
		&stubCatalogService{},
		&stubPricingService{},
		&stubSimilarQuotesService{},
		gen,
	)
	return server.NewRouter(server.RouterConfig{Log: log, QuoteHandler: handler})
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validBody() map[string]any {
	return map[string]any{
		"tenant_id":      "acme",
		"project_type":   "garage",
		"customer_notes": "need shelving for two bikes",
	}
}

func TestHealthcheck(t *testing.T) {
	router := newTestRouter(t, &stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy","service":"quote-ai-backend"}`, w.Body.String())
}

func TestSuggestQuoteSuccess(t *testing.T) {
	gen := &stubGenerator{quote: &types.QuoteResponse{
		QuoteID:  "quote_acme_1700000000",
		TenantID: "acme",
		Subtotal: 300, Tax: 24.75, Total: 324.75,
		EstimatedMarginPercent: 40,
		ConfidenceScore:        0.9,
		GeneratedAt:            time.Now().UTC(),
	}}
	router := newTestRouter(t, gen)

	w := postJSON(t, router, "/ai/suggest-quote", validBody())
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "quote_acme_1700000000", resp.QuoteID)
	require.Equal(t, 324.75, resp.Total)
}

func TestValidationFailures(t *testing.T) {
	router := newTestRouter(t, &stubGenerator{})

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing tenant", map[string]any{"project_type": "garage", "customer_notes": "x"}},
		{"bad project type", map[string]any{"tenant_id": "acme", "project_type": "spaceship", "customer_notes": "x"}},
		{"missing notes", map[string]any{"tenant_id": "acme", "project_type": "garage"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, path := range []string{"/ai/suggest-quote", "/ai/suggest-upsells", "/ai/explain-quote", "/ai/optimize-pricing"} {
				w := postJSON(t, router, path, tc.body)
				require.Equal(t, http.StatusBadRequest, w.Code, path)

				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.NotEmpty(t, body["error"], path)
			}
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"transport", apierr.ModelTransport(errors.New("api key sk-secret leaked in detail")), http.StatusBadGateway, "AI provider request failed"},
		{"invalid output", apierr.InvalidOutputf("sku %q not in catalog", "X"), http.StatusUnprocessableEntity, "AI response failed validation"},
		{"upstream", apierr.UpstreamData(errors.New("pg: connection refused host=10.0.0.5")), http.StatusServiceUnavailable, "Upstream data source unavailable"},
		{"unclassified", errors.New("nil pointer somewhere"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, &stubGenerator{err: tc.err})

			w := postJSON(t, router, "/ai/explain-quote", validBody())
			require.Equal(t, tc.wantStatus, w.Code)
			require.JSONEq(t, `{"error":"`+tc.wantBody+`"}`, w.Body.String())

			// Bodies never leak upstream detail.
			require.NotContains(t, w.Body.String(), "sk-secret")
			require.NotContains(t, w.Body.String(), "10.0.0.5")
			require.NotContains(t, w.Body.String(), "nil pointer")
		})
	}
}

func TestOptimizePricingSuccess(t *testing.T) {
	conf := 0.8
	gen := &stubGenerator{pricing: &types.OptimizedPricingResponse{
		RecommendedPrice:    1450.5,
		TargetMarginPercent: 42,
		Reasoning:           "premium demand",
		ConfidenceScore:     &conf,
		GeneratedAt:         time.Now().UTC(),
	}}
	router := newTestRouter(t, gen)

	w := postJSON(t, router, "/ai/optimize-pricing", validBody())
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.OptimizedPricingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1450.5, resp.RecommendedPrice)
	require.Equal(t, float64(42), resp.TargetMarginPercent)
}
