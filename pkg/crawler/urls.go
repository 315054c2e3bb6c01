package crawler

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

var ErrInvalidURL = errors.New("url must be absolute http or https")

// trackingParams are dropped during normalisation.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "fbclid", "gclid"}

// NormalizeURL canonicalises an absolute http(s) URL: lower-case scheme and
// host, no default port, no fragment, no tracking parameters, sorted query
// and no trailing slash except on the root path.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidURL
	}
	return normalize(u)
}

func normalize(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	out := *u
	out.Scheme = scheme
	out.Fragment = ""
	out.RawFragment = ""
	out.User = nil

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	out.Host = host

	if out.Path == "" {
		out.Path = "/"
	}
	if len(out.Path) > 1 {
		out.Path = strings.TrimRight(out.Path, "/")
	}
	out.RawPath = ""

	query := u.Query()
	for _, p := range trackingParams {
		query.Del(p)
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range query[k] {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	out.RawQuery = strings.Join(parts, "&")
	out.ForceQuery = false

	return out.String(), nil
}

// ResolveLink resolves href against base and normalises it. Fragment-only,
// non-http and cross-domain links are rejected.
func ResolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}

	abs := base.ResolveReference(ref)
	if !SameDomain(base, abs) {
		return "", false
	}
	normalized, err := normalize(abs)
	if err != nil {
		return "", false
	}
	return normalized, true
}

// SameDomain compares hosts, treating a leading "www." as insignificant.
func SameDomain(a, b *url.URL) bool {
	return bareHost(a) == bareHost(b)
}

func bareHost(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
