package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/services"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

// QuoteHandler exposes the four generation operations. Each one binds and
// validates the shared QuoteRequest, gathers whatever context the operation
// needs, and hands off to the generator.
type QuoteHandler struct {
	log       *logger.Logger
	catalog   services.CatalogService
	pricing   services.PricingService
	similar   services.SimilarQuotesService
	generator services.QuoteGenerator
}

func NewQuoteHandler(
	log *logger.Logger,
	catalog services.CatalogService,
	pricing services.PricingService,
	similar services.SimilarQuotesService,
	generator services.QuoteGenerator,
) *QuoteHandler {
	return &QuoteHandler{
		log:       log.With("handler", "QuoteHandler"),
		catalog:   catalog,
		pricing:   pricing,
		similar:   similar,
		generator: generator,
	}
}

func (h *QuoteHandler) bindRequest(c *gin.Context) (types.QuoteRequest, bool) {
	var req types.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, h.log, apierr.Validationf("invalid request body: %v", err))
		return req, false
	}
	if err := req.Validate(); err != nil {
		RespondAPIError(c, h.log, err)
		return req, false
	}
	return req, true
}

// SuggestQuote handles POST /ai/suggest-quote.
func (h *QuoteHandler) SuggestQuote(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	catalog, err := h.catalog.GetByTenant(ctx, req.TenantID)
	if err != nil {
		RespondAPIError(c, h.log, err)
		return
	}
	similar, err := h.similar.FindSimilar(ctx, req)
	if err != nil {
		RespondAPIError(c, h.log, err)
		return
	}

	resp, err := h.generator.SuggestQuote(ctx, req, similar, catalog)
	if err != nil {
		RespondAPIError(c, h.log, err)
		return
	}
	RespondOK(c, resp)
}

// SuggestUpsells handles POST /ai/suggest-upsells.
func (h *QuoteHandler) SuggestUpsells(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	catalog, err := h.catalog.GetByTenant(ctx, req.TenantID)
	if err != nil {
		RespondAPIError(c, h.log, err)
		return
	}

	resp, err := h.generator.SuggestUpsells(ctx, req, catalog)
	if err != nil {
		RespondAPIError(c, h.log, err)
		return
	}
	RespondOK(c, resp)
}

// ExplainQuote handles POST /ai/explain-quote.
func (h *QuoteHandler) ExplainQuote(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	resp, err := h.generator.ExplainQuote(c.Request.Context(), req)
	if err != nil {
		RespondAPIError(c, h.log, err)
		return
	}
	RespondOK(c, resp)
}

// OptimizePricing handles POST /ai/optimize-pricing.
func (h *QuoteHandler) OptimizePricing(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	rules := h.pricing.GetByTenant(ctx, req.TenantID)

	resp, err := h.generator.OptimizePricing(ctx, req, &rules)
	if err != nil {
		RespondAPIError(c, h.log, err)
		return
	}
	RespondOK(c, resp)
}
