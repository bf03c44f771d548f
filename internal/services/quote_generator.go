package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/speedupsharepoint/quote-ai-backend/internal/clients/openai"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/httpx"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/repos"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

// Call types recorded in the AI call log.
const (
	callTypeSuggestQuote    = "suggest_quote"
	callTypeSuggestUpsells  = "suggest_upsells"
	callTypeExplainQuote    = "explain_quote"
	callTypeOptimizePricing = "optimize_pricing"
)

const defaultConfidenceScore = 0.7

// QuoteGenerator owns the prompt -> model -> reconcile pipeline for all four
// generation operations. Financial figures in a QuoteResponse are always
// derived locally; the model's arithmetic is never trusted.
type QuoteGenerator interface {
	SuggestQuote(ctx context.Context, req types.QuoteRequest, similarQuotes []types.HistoricalQuote, catalog []types.CatalogItem) (*types.QuoteResponse, error)
	SuggestUpsells(ctx context.Context, req types.QuoteRequest, catalog []types.CatalogItem) (*types.UpsellSuggestionResponse, error)
	ExplainQuote(ctx context.Context, req types.QuoteRequest) (*types.ExplainQuoteResponse, error)
	OptimizePricing(ctx context.Context, req types.QuoteRequest, rules *types.PricingRule) (*types.OptimizedPricingResponse, error)
}

type GeneratorConfig struct {
	// TaxRate and CostRatio are service-wide defaults; a tenant's
	// PricingRule row can override them.
	TaxRate   float64
	CostRatio float64

	// Retry policy applied uniformly to every operation.
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		TaxRate:     types.DefaultTaxRate,
		CostRatio:   types.DefaultCostRatio,
		MaxAttempts: 3,
		BackoffBase: 2 * time.Second,
		BackoffCap:  10 * time.Second,
	}
}

type quoteGenerator struct {
	log     *logger.Logger
	ai      openai.Client
	builder ContextBuilder
	cfg     GeneratorConfig
	callLog repos.AICallLogRepo // optional; audit only

	// Injectable for tests.
	sleep func(time.Duration)
	now   func() time.Time
}

func NewQuoteGenerator(log *logger.Logger, ai openai.Client, cfg GeneratorConfig, callLog repos.AICallLogRepo) QuoteGenerator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 2 * time.Second
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = 10 * time.Second
	}
	if cfg.TaxRate <= 0 {
		cfg.TaxRate = types.DefaultTaxRate
	}
	if cfg.CostRatio <= 0 {
		cfg.CostRatio = types.DefaultCostRatio
	}
	return &quoteGenerator{
		log:     log.With("service", "QuoteGenerator"),
		ai:      ai,
		builder: NewContextBuilder(),
		cfg:     cfg,
		callLog: callLog,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// -------------------- suggest quote --------------------

func (g *quoteGenerator) SuggestQuote(ctx context.Context, req types.QuoteRequest, similarQuotes []types.HistoricalQuote, catalog []types.CatalogItem) (*types.QuoteResponse, error) {
	g.log.Info("Suggesting quote", "tenant_id", req.TenantID, "project_type", req.ProjectType, "similar_quotes", len(similarQuotes), "catalog_items", len(catalog))

	var out *types.QuoteResponse
	err := g.withRetry(ctx, callTypeSuggestQuote, func() error {
		resp, err := g.suggestQuoteOnce(ctx, req, similarQuotes, catalog)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.log.Info("Suggested quote", "quote_id", out.QuoteID, "total", out.Total, "line_items", len(out.LineItems))
	return out, nil
}

func (g *quoteGenerator) suggestQuoteOnce(ctx context.Context, req types.QuoteRequest, similarQuotes []types.HistoricalQuote, catalog []types.CatalogItem) (*types.QuoteResponse, error) {
	prompt := g.builder.BuildSuggestQuotePrompt(req, similarQuotes, catalog)

	completion, err := g.ai.Complete(ctx, "You are an expert estimator. Return only valid JSON.", prompt, openai.CompleteOptions{
		Temperature:     0.3,
		MaxOutputTokens: 2000,
		JSONOutput:      true,
	})
	if err != nil {
		g.audit(req.TenantID, callTypeSuggestQuote, prompt, nil, err)
		return nil, apierr.ModelTransport(err)
	}
	g.audit(req.TenantID, callTypeSuggestQuote, prompt, completion, nil)

	var payload struct {
		LineItems         *[]modelLineItem `json:"line_items"`
		Reasoning         string           `json:"reasoning"`
		UpsellSuggestions []modelLineItem  `json:"upsell_suggestions"`
		ConfidenceScore   *float64         `json:"confidence_score"`
	}
	if err := json.Unmarshal([]byte(completion.Content), &payload); err != nil {
		return nil, apierr.InvalidOutputf("model returned invalid JSON: %v", err)
	}
	if payload.LineItems == nil {
		return nil, apierr.InvalidOutputf("model response missing line_items")
	}

	skus := catalogSKUSet(catalog)

	// Items the model tagged "upsell" inside line_items are routed into the
	// upsell list so the subtotal covers base+upgrade work only.
	lineItems := make([]types.QuoteLineItem, 0, len(*payload.LineItems))
	upsells := make([]types.QuoteLineItem, 0, len(payload.UpsellSuggestions))
	for i, raw := range *payload.LineItems {
		li, err := reconcileLineItem(raw, skus, fmt.Sprintf("line_items[%d]", i))
		if err != nil {
			return nil, err
		}
		if li.Category == types.LineItemCategoryUpsell {
			upsells = append(upsells, li)
			continue
		}
		lineItems = append(lineItems, li)
	}
	for i, raw := range payload.UpsellSuggestions {
		li, err := reconcileLineItem(raw, skus, fmt.Sprintf("upsell_suggestions[%d]", i))
		if err != nil {
			return nil, err
		}
		upsells = append(upsells, li)
	}

	taxRate := g.cfg.TaxRate
	costRatio := g.cfg.CostRatio

	var subtotal float64
	for _, li := range lineItems {
		subtotal += li.Total
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * taxRate)
	total := round2(subtotal + tax)

	marginPercent := 0.0
	if subtotal > 0 {
		cost := subtotal * costRatio
		marginPercent = round2((subtotal - cost) / subtotal * 100)
	}

	return &types.QuoteResponse{
		QuoteID:                fmt.Sprintf("quote_%s_%d", req.TenantID, completion.Created.Unix()),
		TenantID:               req.TenantID,
		LineItems:              lineItems,
		Subtotal:               subtotal,
		Tax:                    tax,
		Total:                  total,
		EstimatedMarginPercent: marginPercent,
		Reasoning:              payload.Reasoning,
		UpsellSuggestions:      upsells,
		SimilarQuotesUsed:      len(similarQuotes),
		ConfidenceScore:        confidenceOrDefault(payload.ConfidenceScore),
		GeneratedAt:            g.now().UTC(),
	}, nil
}

// -------------------- suggest upsells --------------------

func (g *quoteGenerator) SuggestUpsells(ctx context.Context, req types.QuoteRequest, catalog []types.CatalogItem) (*types.UpsellSuggestionResponse, error) {
	g.log.Info("Suggesting upsells", "tenant_id", req.TenantID, "project_type", req.ProjectType)

	var out *types.UpsellSuggestionResponse
	err := g.withRetry(ctx, callTypeSuggestUpsells, func() error {
		resp, err := g.suggestUpsellsOnce(ctx, req, catalog)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *quoteGenerator) suggestUpsellsOnce(ctx context.Context, req types.QuoteRequest, catalog []types.CatalogItem) (*types.UpsellSuggestionResponse, error) {
	prompt := g.builder.BuildUpsellPrompt(req, catalog)

	completion, err := g.ai.Complete(ctx, "You are an expert sales engineer. Return only valid JSON.", prompt, openai.CompleteOptions{
		Temperature:     0.4,
		MaxOutputTokens: 800,
		JSONOutput:      true,
	})
	if err != nil {
		g.audit(req.TenantID, callTypeSuggestUpsells, prompt, nil, err)
		return nil, apierr.ModelTransport(err)
	}
	g.audit(req.TenantID, callTypeSuggestUpsells, prompt, completion, nil)

	var payload struct {
		UpsellItems     *[]modelLineItem `json:"upsell_items"`
		Reasoning       string           `json:"reasoning"`
		ConfidenceScore *float64         `json:"confidence_score"`
	}
	if err := json.Unmarshal([]byte(completion.Content), &payload); err != nil {
		return nil, apierr.InvalidOutputf("model returned invalid JSON: %v", err)
	}
	if payload.UpsellItems == nil {
		return nil, apierr.InvalidOutputf("model response missing upsell_items")
	}

	skus := catalogSKUSet(catalog)
	items := make([]types.QuoteLineItem, 0, len(*payload.UpsellItems))
	for i, raw := range *payload.UpsellItems {
		li, err := reconcileLineItem(raw, skus, fmt.Sprintf("upsell_items[%d]", i))
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}

	return &types.UpsellSuggestionResponse{
		TenantID:        req.TenantID,
		ProjectType:     req.ProjectType,
		UpsellItems:     items,
		Reasoning:       payload.Reasoning,
		ConfidenceScore: payload.ConfidenceScore,
	}, nil
}

// -------------------- explain quote --------------------

func (g *quoteGenerator) ExplainQuote(ctx context.Context, req types.QuoteRequest) (*types.ExplainQuoteResponse, error) {
	g.log.Info("Explaining quote", "tenant_id", req.TenantID, "project_type", req.ProjectType)

	var out *types.ExplainQuoteResponse
	err := g.withRetry(ctx, callTypeExplainQuote, func() error {
		resp, err := g.explainQuoteOnce(ctx, req)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *quoteGenerator) explainQuoteOnce(ctx context.Context, req types.QuoteRequest) (*types.ExplainQuoteResponse, error) {
	prompt := g.builder.BuildExplainQuotePrompt(req)

	completion, err := g.ai.Complete(ctx, "You explain quotes clearly and concisely.", prompt, openai.CompleteOptions{
		Temperature:     0.5,
		MaxOutputTokens: 1000,
	})
	if err != nil {
		g.audit(req.TenantID, callTypeExplainQuote, prompt, nil, err)
		return nil, apierr.ModelTransport(err)
	}
	g.audit(req.TenantID, callTypeExplainQuote, prompt, completion, nil)

	explanation := strings.TrimSpace(completion.Content)
	if explanation == "" {
		return nil, apierr.InvalidOutputf("model returned an empty explanation")
	}

	return &types.ExplainQuoteResponse{
		Explanation: explanation,
		GeneratedAt: g.now().UTC(),
	}, nil
}

// -------------------- optimize pricing --------------------

func (g *quoteGenerator) OptimizePricing(ctx context.Context, req types.QuoteRequest, rules *types.PricingRule) (*types.OptimizedPricingResponse, error) {
	g.log.Info("Optimizing pricing", "tenant_id", req.TenantID, "project_type", req.ProjectType)

	var out *types.OptimizedPricingResponse
	err := g.withRetry(ctx, callTypeOptimizePricing, func() error {
		resp, err := g.optimizePricingOnce(ctx, req, rules)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *quoteGenerator) optimizePricingOnce(ctx context.Context, req types.QuoteRequest, rules *types.PricingRule) (*types.OptimizedPricingResponse, error) {
	prompt := g.builder.BuildOptimizePricingPrompt(req, rules)

	completion, err := g.ai.Complete(ctx, "You are a pricing strategist. Return only valid JSON.", prompt, openai.CompleteOptions{
		Temperature:     0.3,
		MaxOutputTokens: 1200,
		JSONOutput:      true,
	})
	if err != nil {
		g.audit(req.TenantID, callTypeOptimizePricing, prompt, nil, err)
		return nil, apierr.ModelTransport(err)
	}
	g.audit(req.TenantID, callTypeOptimizePricing, prompt, completion, nil)

	var payload struct {
		RecommendedPrice    *float64       `json:"recommended_price"`
		TargetMarginPercent *float64       `json:"target_margin_percent"`
		Reasoning           string         `json:"reasoning"`
		Adjustments         map[string]any `json:"adjustments"`
		ConfidenceScore     *float64       `json:"confidence_score"`
	}
	if err := json.Unmarshal([]byte(completion.Content), &payload); err != nil {
		return nil, apierr.InvalidOutputf("model returned invalid JSON: %v", err)
	}
	if payload.RecommendedPrice == nil {
		return nil, apierr.InvalidOutputf("model response missing recommended_price")
	}
	if *payload.RecommendedPrice < 0 {
		return nil, apierr.InvalidOutputf("model recommended a negative price: %v", *payload.RecommendedPrice)
	}
	if payload.TargetMarginPercent == nil {
		return nil, apierr.InvalidOutputf("model response missing target_margin_percent")
	}

	return &types.OptimizedPricingResponse{
		RecommendedPrice:    *payload.RecommendedPrice,
		TargetMarginPercent: *payload.TargetMarginPercent,
		Reasoning:           payload.Reasoning,
		Adjustments:         payload.Adjustments,
		ConfidenceScore:     payload.ConfidenceScore,
		GeneratedAt:         g.now().UTC(),
	}, nil
}

// -------------------- retry --------------------

// withRetry applies the coarse operation-level policy: every failure kind is
// retried the same way because each attempt is cheap and the output is
// advisory, not a commit.
func (g *quoteGenerator) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := g.cfg.BackoffBase

	var err error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return apierr.ModelTransport(ctx.Err())
		}

		err = fn()
		if err == nil {
			return nil
		}
		if attempt == g.cfg.MaxAttempts {
			break
		}

		sleepFor := backoff
		if sleepFor > g.cfg.BackoffCap {
			sleepFor = g.cfg.BackoffCap
		}

		g.log.Warn("Generation attempt failed, retrying",
			"operation", op,
			"attempt", attempt,
			"max_attempts", g.cfg.MaxAttempts,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		g.sleep(httpx.JitterSleep(sleepFor))
		backoff *= 2
	}

	g.log.Error("Generation failed after all attempts", "operation", op, "attempts", g.cfg.MaxAttempts, "error", err.Error())
	return err
}

// -------------------- reconciliation helpers --------------------

// modelLineItem is the untrusted line-item shape as emitted by the model.
// Pointer fields distinguish absent from zero.
type modelLineItem struct {
	SKU         *string  `json:"sku"`
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Total       *float64 `json:"total"`
	Category    *string  `json:"category"`
	Reasoning   string   `json:"reasoning"`
}

// reconcileLineItem validates one untrusted item and converts it into the
// domain shape. The model may only price SKUs from the supplied catalog.
func reconcileLineItem(raw modelLineItem, skus map[string]struct{}, where string) (types.QuoteLineItem, error) {
	var zero types.QuoteLineItem

	if raw.SKU == nil || strings.TrimSpace(*raw.SKU) == "" {
		return zero, apierr.InvalidOutputf("%s: missing sku", where)
	}
	sku := strings.TrimSpace(*raw.SKU)
	if _, ok := skus[sku]; !ok {
		return zero, apierr.InvalidOutputf("%s: sku %q is not in the tenant catalog", where, sku)
	}
	if raw.Description == nil || strings.TrimSpace(*raw.Description) == "" {
		return zero, apierr.InvalidOutputf("%s: missing description", where)
	}
	if raw.Quantity == nil {
		return zero, apierr.InvalidOutputf("%s: missing quantity", where)
	}
	if *raw.Quantity <= 0 || *raw.Quantity != math.Trunc(*raw.Quantity) {
		return zero, apierr.InvalidOutputf("%s: quantity %v must be a positive integer", where, *raw.Quantity)
	}
	if raw.UnitPrice == nil {
		return zero, apierr.InvalidOutputf("%s: missing unit_price", where)
	}
	if *raw.UnitPrice < 0 {
		return zero, apierr.InvalidOutputf("%s: unit_price %v must be >= 0", where, *raw.UnitPrice)
	}
	if raw.Total == nil {
		return zero, apierr.InvalidOutputf("%s: missing total", where)
	}
	if raw.Category == nil || !types.ValidLineItemCategory(*raw.Category) {
		return zero, apierr.InvalidOutputf("%s: invalid category", where)
	}

	li := types.QuoteLineItem{
		SKU:         sku,
		Description: strings.TrimSpace(*raw.Description),
		Quantity:    int(*raw.Quantity),
		UnitPrice:   *raw.UnitPrice,
		Total:       *raw.Total,
		Category:    *raw.Category,
		Reasoning:   strings.TrimSpace(raw.Reasoning),
	}
	if !li.ArithmeticallyConsistent() {
		return zero, apierr.InvalidOutputf("%s: total %v does not equal quantity %d x unit_price %v", where, li.Total, li.Quantity, li.UnitPrice)
	}
	return li, nil
}

func catalogSKUSet(catalog []types.CatalogItem) map[string]struct{} {
	skus := make(map[string]struct{}, len(catalog))
	for _, item := range catalog {
		skus[item.SKU] = struct{}{}
	}
	return skus
}

func confidenceOrDefault(v *float64) float64 {
	if v == nil {
		return defaultConfidenceScore
	}
	c := *v
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// -------------------- audit --------------------

// audit mirrors a model call into the AI call log. Best effort: a failed
// write is logged and swallowed, never fatal to the operation.
func (g *quoteGenerator) audit(tenantID, callType, prompt string, completion *openai.Completion, callErr error) {
	if g.callLog == nil {
		return
	}

	row := &types.AICallLog{
		TenantID: tenantID,
		CallType: callType,
		Prompt:   prompt,
		Success:  callErr == nil,
	}
	if callErr != nil {
		row.Error = callErr.Error()
	}
	if completion != nil {
		row.Model = completion.Model
		row.Response = completion.Content
		if raw, err := json.Marshal(completion.Usage); err == nil {
			row.Usage = datatypes.JSON(raw)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := g.callLog.Create(ctx, nil, []*types.AICallLog{row}); err != nil {
		g.log.Warn("AI call log write failed", "call_type", callType, "error", err)
	}
}
