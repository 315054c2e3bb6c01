package crawler

import (
	"path"
	"strings"
)

// PathFilter admits URL paths by include and exclude patterns. A pattern
// containing '*' is a path.Match glob; anything else is a path prefix.
type PathFilter struct {
	Include []string
	Exclude []string
}

func (f PathFilter) Allows(p string) bool {
	if p == "" {
		p = "/"
	}
	for _, pattern := range f.Exclude {
		if matchPath(pattern, p) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if matchPath(pattern, p) {
			return true
		}
	}
	return false
}

func matchPath(pattern, p string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if strings.Contains(pattern, "*") {
		ok, err := path.Match(pattern, p)
		if err == nil && ok {
			return true
		}
		// "/blog/*" also covers deeper paths
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasSuffix(pattern, "/*") && strings.HasPrefix(p, prefix)
	}
	return p == pattern || strings.HasPrefix(p, strings.TrimSuffix(pattern, "/")+"/")
}
