package extractor

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockSelectors = "p, div, br, li, tr, h1, h2, h3, h4, h5, h6, blockquote, pre, section, article"

// HTMLToText drops script-like elements and returns the remaining text with
// one line per block element. Input without markup passes through trimmed.
func HTMLToText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapseLines(html.UnescapeString(fragment))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseLines(fragment)
	}
	doc.Find("script, style, noscript, iframe, svg, head").Remove()
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})
	return collapseLines(doc.Text())
}

// collapseLines trims every line, collapses inner whitespace and drops
// empty lines.
func collapseLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
