package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/speedupsharepoint/quote-ai-backend/internal/clients/openai"
	"github.com/speedupsharepoint/quote-ai-backend/internal/clients/pinecone"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
	"github.com/speedupsharepoint/quote-ai-backend/internal/utils"
)

const similarQuotesTopK = 50

// SimilarQuotesService retrieves historical quotes that resemble an incoming
// request: embed the request text, query the vector index in the tenant's
// namespace, and hydrate matches from their metadata.
type SimilarQuotesService interface {
	FindSimilar(ctx context.Context, req types.QuoteRequest) ([]types.HistoricalQuote, error)
}

type similarQuotesService struct {
	log       *logger.Logger
	ai        openai.Client
	pc        pinecone.Client
	indexName string

	mu   sync.Mutex
	host string // resolved lazily from DescribeIndex
}

func NewSimilarQuotesService(log *logger.Logger, ai openai.Client, pc pinecone.Client) SimilarQuotesService {
	svcLog := log.With("service", "SimilarQuotesService")
	return &similarQuotesService{
		log:       svcLog,
		ai:        ai,
		pc:        pc,
		indexName: utils.GetEnv("PINECONE_INDEX_NAME", "quote-history", svcLog),
	}
}

func (s *similarQuotesService) FindSimilar(ctx context.Context, req types.QuoteRequest) ([]types.HistoricalQuote, error) {
	host, err := s.indexHost(ctx)
	if err != nil {
		return nil, apierr.UpstreamData(fmt.Errorf("resolve vector index host: %w", err))
	}

	vectors, err := s.ai.Embed(ctx, []string{embeddingText(req)})
	if err != nil {
		return nil, apierr.UpstreamData(fmt.Errorf("embed quote request: %w", err))
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, apierr.UpstreamData(fmt.Errorf("embedding response was empty"))
	}

	resp, err := s.pc.Query(ctx, host, pinecone.QueryRequest{
		Namespace:       req.TenantID,
		Vector:          vectors[0],
		TopK:            similarQuotesTopK,
		Filter:          map[string]any{"project_type": string(req.ProjectType)},
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, apierr.UpstreamData(fmt.Errorf("vector query: %w", err))
	}

	quotes := make([]types.HistoricalQuote, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		hq, err := historicalQuoteFromMetadata(req.TenantID, m)
		if err != nil {
			// A single bad record never fails the search.
			s.log.Warn("Skipping malformed similar-quote match", "match_id", m.ID, "error", err.Error())
			continue
		}
		quotes = append(quotes, hq)
	}

	s.log.Info("Similar quote search complete", "tenant_id", req.TenantID, "matches", len(resp.Matches), "usable", len(quotes))
	return quotes, nil
}

func (s *similarQuotesService) indexHost(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.host != "" {
		return s.host, nil
	}
	desc, err := s.pc.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return "", err
	}
	s.host = desc.Host
	return s.host, nil
}

// embeddingText flattens the request into the same free-text form the
// historical quotes were embedded with at index time.
func embeddingText(req types.QuoteRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project type: %s. Customer notes: %s.", req.ProjectType, req.CustomerNotes)
	if req.SquareFootage != nil {
		fmt.Fprintf(&b, " Square footage: %s.", formatNumber(*req.SquareFootage))
	}
	if req.CeilingHeight != nil {
		fmt.Fprintf(&b, " Ceiling height: %s.", formatNumber(*req.CeilingHeight))
	}
	if strings.TrimSpace(req.BudgetRange) != "" {
		fmt.Fprintf(&b, " Budget range: %s.", req.BudgetRange)
	}
	return b.String()
}

// historicalQuoteFromMetadata hydrates one index match. Vector metadata is
// flat, so line_items arrive as a JSON string.
func historicalQuoteFromMetadata(tenantID string, m pinecone.QueryMatch) (types.HistoricalQuote, error) {
	var zero types.HistoricalQuote
	if len(m.Metadata) == 0 {
		return zero, fmt.Errorf("match has no metadata")
	}

	quoteID, ok := metaString(m.Metadata, "quote_id")
	if !ok {
		return zero, fmt.Errorf("metadata missing quote_id")
	}
	projectType, ok := metaString(m.Metadata, "project_type")
	if !ok {
		return zero, fmt.Errorf("metadata missing project_type")
	}
	totalAmount, ok := metaFloat(m.Metadata, "total_amount")
	if !ok {
		return zero, fmt.Errorf("metadata missing total_amount")
	}

	hq := types.HistoricalQuote{
		QuoteID:     quoteID,
		TenantID:    tenantID,
		ProjectType: types.ProjectType(projectType),
		TotalAmount: totalAmount,
	}

	if notes, ok := metaString(m.Metadata, "customer_notes"); ok {
		hq.CustomerNotes = notes
	}
	if notes, ok := metaString(m.Metadata, "sales_rep_notes"); ok {
		hq.SalesRepNotes = notes
	}
	if sqft, ok := metaFloat(m.Metadata, "square_footage"); ok {
		hq.SquareFootage = &sqft
	}
	if won, ok := m.Metadata["won"].(bool); ok {
		hq.Won = won
	}
	if days, ok := metaFloat(m.Metadata, "time_to_close_days"); ok {
		d := int(days)
		hq.TimeToCloseDays = &d
	}
	if raw, ok := metaString(m.Metadata, "created_at"); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			hq.CreatedAt = ts
		}
	}

	if raw, ok := metaString(m.Metadata, "line_items"); ok && raw != "" {
		var items []types.QuoteLineItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return zero, fmt.Errorf("metadata line_items not valid JSON: %w", err)
		}
		hq.LineItems = items
	}

	return hq, nil
}

func metaString(meta map[string]any, key string) (string, bool) {
	v, ok := meta[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func metaFloat(meta map[string]any, key string) (float64, bool) {
	switch v := meta[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
