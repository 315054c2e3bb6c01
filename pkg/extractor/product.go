package extractor

import (
	"fmt"
	"sort"
	"strings"

	"ai-shopassist-be/internal/entity"
)

// productFields are the attribute keys rendered first, in this order, with
// their labels. Remaining scalar attributes follow alphabetically.
var productFields = []struct {
	key   string
	label string
}{
	{"sku", "SKU"},
	{"price", "Price"},
	{"regular_price", "Regular price"},
	{"sale_price", "Sale price"},
	{"currency", "Currency"},
	{"stock_status", "Stock"},
	{"categories", "Categories"},
	{"tags", "Tags"},
	{"brand", "Brand"},
	{"color", "Color"},
	{"size", "Size"},
	{"variations", "Options"},
}

// ProductExtractor renders a commerce product record as labelled lines.
type ProductExtractor struct{}

func NewProductExtractor() *ProductExtractor {
	return &ProductExtractor{}
}

func (e *ProductExtractor) Extract(item *entity.StoreContent) (string, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return "", fmt.Errorf("product %d has no name: %w", item.Id, ErrNoContent)
	}

	lines := []string{"Product: " + title}

	seen := make(map[string]bool)
	for _, f := range productFields {
		seen[f.key] = true
		if v := formatAttribute(item.Attributes[f.key]); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}

	var extra []string
	for key := range item.Attributes {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		if v := formatAttribute(item.Attributes[key]); v != "" {
			lines = append(lines, humanize(key)+": "+v)
		}
	}

	if excerpt := HTMLToText(item.Excerpt); excerpt != "" {
		lines = append(lines, "Summary: "+excerpt)
	}
	if body := HTMLToText(item.Body); body != "" {
		lines = append(lines, "Description: "+body)
	}
	if item.URL != "" {
		lines = append(lines, "URL: "+item.URL)
	}

	return strings.Join(lines, "\n"), nil
}

func formatAttribute(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", val), "0"), ".")
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, el := range val {
			if s := formatAttribute(el); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := formatAttribute(val[k]); s != "" {
				parts = append(parts, humanize(k)+" "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(val)
	}
}

func humanize(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
