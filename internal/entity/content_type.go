package entity

import "strings"

// ContentType identifies the kind of item an embedding row belongs to.
// The set is open: unknown values are stored as-is and ranked last.
type ContentType string

const (
	ContentTypeProduct          ContentType = "product"
	ContentTypeProductVariation ContentType = "product_variation"
	ContentTypePost             ContentType = "post"
	ContentTypePage             ContentType = "page"
	ContentTypeSettings         ContentType = "settings"
	ContentTypePDF              ContentType = "pdf"
	ContentTypeExternalURL      ContentType = "external_url"
)

// SingletonContentID is the content id used by singleton content types.
const SingletonContentID int64 = 0

// productAliases lists the product post types used by the commerce integrations
// the storefront can run on. A request for "product" always expands to these.
var productAliases = []ContentType{
	ContentTypeProduct,
	ContentTypeProductVariation,
	"shop_product",
	"download",
}

var typeWeights = map[ContentType]float64{
	ContentTypeSettings:         1.3,
	ContentTypeProduct:          1.2,
	ContentTypePost:             1.0,
	ContentTypePage:             1.0,
	ContentTypeProductVariation: 0.8,
	ContentTypePDF:              0.8,
	ContentTypeExternalURL:      0.8,
}

var typePriorities = map[ContentType]int{
	ContentTypeSettings:         4,
	ContentTypeProduct:          3,
	ContentTypePost:             2,
	ContentTypePage:             2,
	ContentTypeProductVariation: 1,
	ContentTypePDF:              1,
	ContentTypeExternalURL:      1,
}

func ParseContentType(s string) ContentType {
	return ContentType(strings.ToLower(strings.TrimSpace(s)))
}

func (t ContentType) String() string {
	return string(t)
}

// Weight is the trust multiplier applied to the cosine score of a candidate.
// Integration product aliases are weighted like products.
func (t ContentType) Weight() float64 {
	if w, ok := typeWeights[t]; ok {
		return w
	}
	if t.IsProductFamily() {
		return typeWeights[ContentTypeProduct]
	}
	return 1.0
}

// Priority is the primary ranking key. Higher always ranks first.
func (t ContentType) Priority() int {
	if p, ok := typePriorities[t]; ok {
		return p
	}
	if t.IsProductFamily() {
		return typePriorities[ContentTypeProduct]
	}
	return 0
}

// IsSingleton reports whether the type keeps a single row per content id.
func (t ContentType) IsSingleton() bool {
	return t == ContentTypeSettings
}

func (t ContentType) IsProductFamily() bool {
	for _, a := range productAliases {
		if a == t {
			return true
		}
	}
	return false
}

// IsCrawled reports whether rows of this type carry provenance fields.
func (t ContentType) IsCrawled() bool {
	return t == ContentTypeExternalURL
}

// ExpandContentTypes resolves the alias table and removes duplicates while
// keeping the caller's order.
func ExpandContentTypes(types []ContentType) []ContentType {
	seen := make(map[ContentType]bool, len(types))
	var out []ContentType
	add := func(t ContentType) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}

	for _, t := range types {
		if t == ContentTypeProduct {
			for _, a := range productAliases {
				add(a)
			}
			continue
		}
		add(t)
	}
	return out
}

// ProductAliases returns a copy of the product alias table.
func ProductAliases() []ContentType {
	out := make([]ContentType, len(productAliases))
	copy(out, productAliases)
	return out
}

// SearchableContentTypes is the retrieval scope used when a caller names none.
func SearchableContentTypes() []ContentType {
	return []ContentType{
		ContentTypeSettings,
		ContentTypeProduct,
		ContentTypePost,
		ContentTypePage,
		ContentTypePDF,
		ContentTypeExternalURL,
	}
}
