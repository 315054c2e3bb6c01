package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// textMarkers are phrases shown on bot challenge and verification pages.
// They are matched against visible text so a CDN script URL does not count.
var textMarkers = []string{
	"cloudflare",
	"checking your browser",
	"just a moment...",
	"attention required",
	"verify you are human",
	"verify you are a human",
	"are you a robot",
	"captcha",
	"ddos protection",
	"perimeterx",
	"incapsula",
	"distil networks",
	"sucuri website firewall",
	"access denied",
}

// markupMarkers only appear in challenge page markup.
var markupMarkers = []string{
	"cf-browser-verification",
	"cf-chl-",
	"_incapsula_resource",
	"px-captcha",
}

// ProtectionError is returned when the seed URL serves a challenge page.
type ProtectionError struct {
	URL    string
	Marker string
}

func (e *ProtectionError) Error() string {
	return fmt.Sprintf("%s is protected against automated access (matched %q)", e.URL, e.Marker)
}

// DetectBotProtection scans a response body for challenge page vocabulary
// and returns the first marker found.
func DetectBotProtection(body []byte) (string, bool) {
	lower := bytes.ToLower(body)
	for _, marker := range markupMarkers {
		if bytes.Contains(lower, []byte(marker)) {
			return marker, true
		}
	}

	text := string(lower)
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(lower)); err == nil {
		doc.Find("script, style, noscript, link, meta").Remove()
		text = doc.Text()
	}
	for _, marker := range textMarkers {
		if strings.Contains(text, marker) {
			return marker, true
		}
	}
	return "", false
}
