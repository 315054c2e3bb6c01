package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ai-shopassist-be/internal/entity"
)

// Settings is the store configuration the engine reads at run time.
type Settings struct {
	APIKey          string                         `json:"api_key"`
	BatchSize       int                            `json:"model_batch_size"`
	ExcludedIDs     map[entity.ContentType][]int64 `json:"excluded_ids_per_type"`
	CommerceEnabled bool                           `json:"commerce_enabled"`
	StoreKnowledge  string                         `json:"store_knowledge"`
	Crawl           CrawlLimits                    `json:"crawl_limits"`
	Upload          UploadLimits                   `json:"upload_limits"`
}

type CrawlLimits struct {
	MaxPages int `json:"max_pages"`
	MaxDepth int `json:"max_depth"`
}

type UploadLimits struct {
	MaxBytes int64 `json:"max_bytes"`
}

// IsExcluded reports whether an item is on the exclusion list. Product
// aliases share the product list.
func (s *Settings) IsExcluded(contentType entity.ContentType, id int64) bool {
	for _, excluded := range s.excludedFor(contentType) {
		if excluded == id {
			return true
		}
	}
	return false
}

func (s *Settings) excludedFor(contentType entity.ContentType) []int64 {
	ids := s.ExcludedIDs[contentType]
	if contentType != entity.ContentTypeProduct && contentType.IsProductFamily() {
		ids = append(append([]int64(nil), ids...), s.ExcludedIDs[entity.ContentTypeProduct]...)
	}
	return ids
}

// Exclusions returns the exclusion lists keyed by every concrete type they
// cover, with the product list copied onto each product alias.
func (s *Settings) Exclusions() map[entity.ContentType][]int64 {
	out := make(map[entity.ContentType][]int64, len(s.ExcludedIDs))
	for contentType := range s.ExcludedIDs {
		for _, t := range entity.ExpandContentTypes([]entity.ContentType{contentType}) {
			out[t] = s.excludedFor(t)
		}
	}
	return out
}

// NewlyExcluded returns ids present in next's exclusion lists but not in prev's.
func NewlyExcluded(prev, next *Settings) map[entity.ContentType][]int64 {
	out := make(map[entity.ContentType][]int64)
	for contentType, ids := range next.ExcludedIDs {
		known := make(map[int64]bool)
		if prev != nil {
			for _, id := range prev.ExcludedIDs[contentType] {
				known[id] = true
			}
		}
		for _, id := range ids {
			if !known[id] {
				out[contentType] = append(out[contentType], id)
			}
		}
	}
	return out
}

// ParseExcludedIDs reads "product:12,14;page:3".
func ParseExcludedIDs(raw string) (map[entity.ContentType][]int64, error) {
	out := make(map[entity.ContentType][]int64)
	for _, group := range strings.Split(raw, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		name, list, ok := strings.Cut(group, ":")
		if !ok {
			return nil, fmt.Errorf("excluded ids group %q has no type", group)
		}
		contentType := entity.ParseContentType(name)
		for _, field := range strings.Split(list, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("excluded id %q for %s: %w", field, contentType, err)
			}
			out[contentType] = append(out[contentType], id)
		}
		sort.Slice(out[contentType], func(i, j int) bool { return out[contentType][i] < out[contentType][j] })
	}
	return out, nil
}
