package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"ai-shopassist-be/internal/entity"
)

const (
	vectorShare    = 0.7
	relevanceShare = 0.3

	overlapShare   = 0.4
	substringShare = 0.3
	conceptShare   = 0.3

	substringBonus = 0.3
	synonymBonus   = 0.2
	maxConceptSum  = 1.0
)

// Result is one ranked chunk.
type Result struct {
	ContentType entity.ContentType `json:"content_type"`
	ContentId   int64              `json:"content_id"`
	ChunkText   string             `json:"chunk_text"`
	SourceURL   string             `json:"source_url,omitempty"`
	Similarity  float64            `json:"similarity"`
	Relevance   float64            `json:"relevance"`
	Score       float64            `json:"score"`
}

// CosineSimilarity returns 0 when either vector is empty, zero-norm or the
// dimensions disagree.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// float error can leave identical vectors a hair above 1
	return math.Max(-1, math.Min(1, sim))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// ChunkRelevance is the lexical score of a chunk against the query, in [0, 1].
func ChunkRelevance(query, chunk string) float64 {
	queryWords := tokenize(query)
	if len(queryWords) == 0 {
		return 0
	}
	lowerChunk := strings.ToLower(chunk)
	chunkWords := make(map[string]bool)
	for _, w := range tokenize(chunk) {
		chunkWords[w] = true
	}

	uniqueQuery := make(map[string]bool, len(queryWords))
	for _, w := range queryWords {
		uniqueQuery[w] = true
	}
	matched := 0
	for w := range uniqueQuery {
		if chunkWords[w] {
			matched++
		}
	}
	overlap := float64(matched) / float64(len(uniqueQuery))

	substring := 0.0
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" && strings.Contains(lowerChunk, q) {
		substring = substringBonus
	}

	concept := 0.0
	for w := range uniqueQuery {
		for _, key := range conceptsFor(w) {
			for _, syn := range append([]string{key}, conceptGroups[key]...) {
				if syn != w && containsTerm(lowerChunk, chunkWords, syn) {
					concept += synonymBonus
				}
			}
		}
	}
	concept = math.Min(concept, maxConceptSum)

	return overlapShare*overlap + substringShare*substring + conceptShare*concept
}

func containsTerm(lowerChunk string, chunkWords map[string]bool, term string) bool {
	if strings.Contains(term, " ") {
		return strings.Contains(lowerChunk, term)
	}
	return chunkWords[term]
}

// Rank scores candidates against the query, drops those whose weighted
// similarity is below threshold, orders by type priority then score, and
// caps the list at limit (limit <= 0 keeps everything).
func Rank(queryVector []float32, query string, candidates []*entity.Embedding, threshold float64, limit int) []Result {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		weighted := CosineSimilarity(queryVector, c.Vector) * c.ContentType.Weight()
		if weighted < threshold {
			continue
		}
		relevance := ChunkRelevance(query, c.ChunkText)
		results = append(results, Result{
			ContentType: c.ContentType,
			ContentId:   c.ContentId,
			ChunkText:   c.ChunkText,
			SourceURL:   c.SourceURL,
			Similarity:  weighted,
			Relevance:   relevance,
			Score:       vectorShare*weighted + relevanceShare*relevance,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := results[i].ContentType.Priority(), results[j].ContentType.Priority()
		if pi != pj {
			return pi > pj
		}
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ProductIDs reduces ranked results to distinct product-family content ids
// in rank order, minus excluded ids.
func ProductIDs(results []Result, excluded []int64) []int64 {
	skip := make(map[int64]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}
	ids := make([]int64, 0, len(results))
	for _, r := range results {
		if !r.ContentType.IsProductFamily() || skip[r.ContentId] {
			continue
		}
		skip[r.ContentId] = true
		ids = append(ids, r.ContentId)
	}
	return ids
}
