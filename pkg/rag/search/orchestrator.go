package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/pkg/embedding"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultLimit     = 5
	DefaultThreshold = 0.3
)

type Intent string

const (
	IntentGeneral       Intent = "general"
	IntentProductSearch Intent = "product_search"
)

// Query describes one retrieval call. A nil Threshold means
// DefaultThreshold; zero is a real threshold that keeps every candidate.
type Query struct {
	Text         string               `json:"text"`
	Limit        int                  `json:"limit"`
	Threshold    *float64             `json:"threshold"`
	ContentTypes []entity.ContentType `json:"content_types"`
	Intent       Intent               `json:"intent"`
}

// Response carries ranked chunks, or product ids for product-search intents.
type Response struct {
	Results    []Result `json:"results,omitempty"`
	ProductIDs []int64  `json:"product_ids,omitempty"`
}

// CandidateSource supplies the candidate pool for a type scope.
type CandidateSource interface {
	FetchByTypes(ctx context.Context, types []entity.ContentType) ([]*entity.Embedding, error)
}

// Policy exposes the live store settings retrieval depends on.
type Policy interface {
	CommerceEnabled() bool
	ExcludedIDs(contentType entity.ContentType) []int64
}

type Cache interface {
	Get(key string) (Response, bool)
	Save(key string, value Response)
}

// Orchestrator embeds the query once, ranks the scoped candidate pool and
// caches the final response by query hash until the cache TTL expires.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	candidates        CandidateSource
	policy            Policy
	cache             Cache
	logger            logger.ILogger
}

func NewOrchestrator(
	embeddingProvider embedding.EmbeddingProvider,
	candidates CandidateSource,
	policy Policy,
	cache Cache,
	logger logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		candidates:        candidates,
		policy:            policy,
		cache:             cache,
		logger:            logger,
	}
}

func (q Query) normalized() Query {
	q.Text = strings.TrimSpace(q.Text)
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Threshold == nil {
		threshold := DefaultThreshold
		q.Threshold = &threshold
	}
	if q.Intent == "" {
		q.Intent = IntentGeneral
	}
	if q.Intent == IntentProductSearch {
		q.ContentTypes = []entity.ContentType{entity.ContentTypeProduct}
	}
	if len(q.ContentTypes) == 0 {
		q.ContentTypes = entity.SearchableContentTypes()
	}
	q.ContentTypes = entity.ExpandContentTypes(q.ContentTypes)
	return q
}

func cacheKey(q Query) string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// FindSimilar returns ranked chunks, or product ids when the intent is
// product search. An empty query returns an empty response without
// calling the embedding provider.
func (o *Orchestrator) FindSimilar(ctx context.Context, query Query) (*Response, error) {
	ctx, span := otel.Tracer("retrieval").Start(ctx, "search.FindSimilar")
	defer span.End()

	q := query.normalized()
	span.SetAttributes(
		attribute.String("intent", string(q.Intent)),
		attribute.Int("limit", q.Limit),
		attribute.Float64("threshold", *q.Threshold),
	)

	if q.Text == "" {
		return &Response{}, nil
	}
	if q.Intent == IntentProductSearch && !o.policy.CommerceEnabled() {
		o.logger.Debug("RETRIEVAL", "Product search skipped, commerce disabled", nil)
		return &Response{}, nil
	}

	key := cacheKey(q)
	if cached, ok := o.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return &cached, nil
	}

	queryVector, err := o.embeddingProvider.Embed(ctx, q.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	candidates, err := o.candidates.FetchByTypes(ctx, q.ContentTypes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate fetch failed")
		o.logger.Error("RETRIEVAL", "Candidate fetch failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	var (
		res    Response
		ranked []Result
	)
	if q.Intent == IntentProductSearch {
		// the limit counts products, so rank everything and cap the ids
		ranked = Rank(queryVector, q.Text, candidates, *q.Threshold, 0)
		var excluded []int64
		for _, t := range entity.ProductAliases() {
			excluded = append(excluded, o.policy.ExcludedIDs(t)...)
		}
		res.ProductIDs = ProductIDs(ranked, excluded)
		if len(res.ProductIDs) > q.Limit {
			res.ProductIDs = res.ProductIDs[:q.Limit]
		}
	} else {
		ranked = Rank(queryVector, q.Text, candidates, *q.Threshold, q.Limit)
		res.Results = ranked
	}

	o.logger.Debug("RETRIEVAL", "Query ranked", map[string]interface{}{
		"candidates": len(candidates),
		"results":    len(ranked),
		"intent":     q.Intent,
	})

	o.cache.Save(key, res)
	return &res, nil
}
