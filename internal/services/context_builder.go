package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
)

// Sentinel texts rendered when a context section has no data. The model gets
// an explicit statement of absence instead of an empty section.
const (
	noSimilarQuotesSentinel = "No similar quotes found."
	noCatalogItemsSentinel  = "No catalog items available."
	standardPricingSentinel = "Standard pricing applies."
)

// Bounds on prompt context size.
const (
	maxSimilarQuotesInPrompt = 10
	maxItemsPerQuoteSummary  = 5
	maxNotesCharsInSummary   = 100
)

// ContextBuilder renders the instruction documents sent to the model. Every
// builder is a pure function of its inputs: identical inputs produce
// byte-identical prompts, which keeps generation reproducible and testable.
type ContextBuilder struct{}

func NewContextBuilder() ContextBuilder { return ContextBuilder{} }

// BuildSuggestQuotePrompt renders the primary quote-generation prompt: the
// request, a condensed view of comparable past quotes, the tenant catalog
// filtered to the request's project type, and the output contract.
func (ContextBuilder) BuildSuggestQuotePrompt(req types.QuoteRequest, similarQuotes []types.HistoricalQuote, catalog []types.CatalogItem) string {
	relevant := filterCatalogByProjectType(catalog, req.ProjectType)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert estimator for %s.\n\n", req.TenantID)

	b.WriteString("# CUSTOMER REQUEST\n")
	fmt.Fprintf(&b, "Project Type: %s\n", req.ProjectType)
	fmt.Fprintf(&b, "Customer Notes: %s\n", req.CustomerNotes)
	fmt.Fprintf(&b, "Square Footage: %s\n", orNotSpecified(req.SquareFootage))
	fmt.Fprintf(&b, "Ceiling Height: %s\n", orNotSpecified(req.CeilingHeight))
	fmt.Fprintf(&b, "Budget Range: %s\n", orNotSpecifiedStr(req.BudgetRange))

	b.WriteString("\n# SIMILAR PAST QUOTES\n")
	b.WriteString(formatSimilarQuotes(similarQuotes))

	b.WriteString("\n# AVAILABLE CATALOG ITEMS\n")
	b.WriteString(formatCatalog(relevant))

	b.WriteString(`
# TASK
Generate a detailed quote suggestion using ONLY valid JSON:

{
  "line_items": [
    {
      "sku": "EXACT_SKU_FROM_CATALOG",
      "description": "User-friendly description",
      "quantity": 5,
      "unit_price": 299.99,
      "total": 1499.95,
      "category": "base",
      "reasoning": "Why this item and quantity"
    }
  ],
  "reasoning": "Overall quote strategy",
  "upsell_suggestions": [],
  "confidence_score": 0.85
}

RULES:
1. Use only SKUs from the catalog.
2. Base quantities on square footage and project type.
3. Reference patterns from similar quotes.
4. Include reasoning for each line item.
5. Suggest 2-3 upsells.
6. Return ONLY valid JSON.
`)

	return b.String()
}

// BuildUpsellPrompt renders the narrower upsell-only prompt.
func (ContextBuilder) BuildUpsellPrompt(req types.QuoteRequest, catalog []types.CatalogItem) string {
	relevant := filterCatalogByProjectType(catalog, req.ProjectType)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert sales engineer for %s.\n\n", req.TenantID)

	b.WriteString("# CUSTOMER REQUEST\n")
	fmt.Fprintf(&b, "Project Type: %s\n", req.ProjectType)
	fmt.Fprintf(&b, "Customer Notes: %s\n", req.CustomerNotes)

	b.WriteString("\n# AVAILABLE CATALOG ITEMS\n")
	b.WriteString(formatCatalog(relevant))

	b.WriteString(`
# TASK
Suggest 2-5 upsell items that would meaningfully improve the project outcome.

Return ONLY valid JSON:

{
  "upsell_items": [
    {
      "sku": "EXACT_SKU_FROM_CATALOG",
      "description": "Short description",
      "quantity": 1,
      "unit_price": 199.99,
      "total": 199.99,
      "category": "upsell",
      "reasoning": "Why this is a valuable upgrade"
    }
  ],
  "reasoning": "Overall upsell strategy",
  "confidence_score": 0.85
}
`)

	return b.String()
}

// BuildExplainQuotePrompt renders the free-text explanation prompt. No
// structured output is requested.
func (ContextBuilder) BuildExplainQuotePrompt(req types.QuoteRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert estimator who explains quotes clearly.\n\n")

	b.WriteString("# CUSTOMER REQUEST\n")
	fmt.Fprintf(&b, "Project Type: %s\n", req.ProjectType)
	fmt.Fprintf(&b, "Customer Notes: %s\n", req.CustomerNotes)

	b.WriteString(`
# TASK
Explain the reasoning behind the quote in clear, friendly language.
Do NOT return JSON. Return plain text only.
`)

	return b.String()
}

// BuildOptimizePricingPrompt renders the pricing-strategy prompt including
// the tenant's pricing rules (or the standard-pricing sentinel).
func (ContextBuilder) BuildOptimizePricingPrompt(req types.QuoteRequest, rules *types.PricingRule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a pricing strategist for %s.\n\n", req.TenantID)

	b.WriteString("# CUSTOMER REQUEST\n")
	fmt.Fprintf(&b, "Project Type: %s\n", req.ProjectType)
	fmt.Fprintf(&b, "Customer Notes: %s\n", req.CustomerNotes)
	fmt.Fprintf(&b, "Budget Range: %s\n", orNotSpecifiedStr(req.BudgetRange))

	b.WriteString("\n# PRICING RULES\n")
	b.WriteString(formatPricingRules(rules))

	b.WriteString(`
# TASK
Recommend an optimized price and margin strategy.

Return ONLY valid JSON:

{
  "recommended_price": 1234.56,
  "target_margin_percent": 40,
  "reasoning": "Why this pricing strategy is optimal",
  "adjustments": {
    "seasonal_multiplier": 1.0,
    "volume_discount_applied": false
  },
  "confidence_score": 0.85
}
`)

	return b.String()
}

// -------------------- helpers --------------------

// filterCatalogByProjectType keeps items whose category contains the project
// type token, case-insensitively. Substring (not exact) match, so a category
// like "closet-accessories" is relevant to project type "closet".
func filterCatalogByProjectType(catalog []types.CatalogItem, pt types.ProjectType) []types.CatalogItem {
	token := strings.ToLower(string(pt))
	out := make([]types.CatalogItem, 0, len(catalog))
	for _, item := range catalog {
		if strings.Contains(strings.ToLower(item.Category), token) {
			out = append(out, item)
		}
	}
	return out
}

func formatSimilarQuotes(quotes []types.HistoricalQuote) string {
	if len(quotes) == 0 {
		return noSimilarQuotesSentinel + "\n"
	}

	if len(quotes) > maxSimilarQuotesInPrompt {
		quotes = quotes[:maxSimilarQuotesInPrompt]
	}

	var b strings.Builder
	for i, q := range quotes {
		items := q.LineItems
		if len(items) > maxItemsPerQuoteSummary {
			items = items[:maxItemsPerQuoteSummary]
		}
		summaries := make([]string, 0, len(items))
		for _, li := range items {
			summaries = append(summaries, fmt.Sprintf("%dx %s", li.Quantity, li.SKU))
		}

		notes := q.CustomerNotes
		if len(notes) > maxNotesCharsInSummary {
			notes = notes[:maxNotesCharsInSummary]
		}

		outcome := "LOST"
		if q.Won {
			outcome = "WON"
		}

		fmt.Fprintf(&b, "\nQuote %d:\n", i+1)
		fmt.Fprintf(&b, "  - Project: %s (%s sqft)\n", q.ProjectType, orNA(q.SquareFootage))
		fmt.Fprintf(&b, "  - Customer: %q\n", notes+"...")
		fmt.Fprintf(&b, "  - Items: %s\n", strings.Join(summaries, ", "))
		fmt.Fprintf(&b, "  - Total: %s\n", formatCurrency(q.TotalAmount))
		fmt.Fprintf(&b, "  - Result: %s\n", outcome)
	}

	return b.String()
}

func formatCatalog(catalog []types.CatalogItem) string {
	if len(catalog) == 0 {
		return noCatalogItemsSentinel + "\n"
	}

	var b strings.Builder
	for _, item := range catalog {
		qty := item.TypicalQuantityRange
		if qty == "" {
			qty = "Varies"
		}
		fmt.Fprintf(&b, "\n- SKU: %s\n", item.SKU)
		fmt.Fprintf(&b, "  Name: %s\n", item.Name)
		fmt.Fprintf(&b, "  Description: %s\n", item.Description)
		fmt.Fprintf(&b, "  Price: $%.2f\n", item.BasePrice)
		fmt.Fprintf(&b, "  Typical Qty: %s\n", qty)
	}

	return b.String()
}

func formatPricingRules(rules *types.PricingRule) string {
	if rules == nil {
		return standardPricingSentinel + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Target Margin: %s%%\n", formatNumber(rules.TargetMarginPercent))
	fmt.Fprintf(&b, "- Minimum Margin: %s%%\n", formatNumber(rules.MinimumMarginPercent))
	fmt.Fprintf(&b, "- Volume Discount: %d items @ %s%%\n", rules.VolumeDiscountThreshold, formatNumber(rules.VolumeDiscountPercent))
	fmt.Fprintf(&b, "- Seasonal Multiplier: %s\n", formatNumber(rules.SeasonalMultiplier))
	fmt.Fprintf(&b, "- Tax Rate: %s\n", formatNumber(rules.TaxRate))
	fmt.Fprintf(&b, "- Cost Ratio: %s\n", formatNumber(rules.CostRatio))
	return b.String()
}

// formatCurrency renders a dollar amount with thousands separators, e.g.
// 12345.5 -> "$12,345.50".
func formatCurrency(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var grouped strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	out := "$" + grouped.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// formatNumber drops trailing zeros: 40.0 -> "40", 12.5 -> "12.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNotSpecified(v *float64) string {
	if v == nil {
		return "Not specified"
	}
	return formatNumber(*v)
}

func orNotSpecifiedStr(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

func orNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatNumber(*v)
}
