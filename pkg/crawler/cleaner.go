package crawler

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// navigationLabels are dropped when they make up a whole block.
var navigationLabels = map[string]bool{
	"home": true, "menu": true, "cart": true, "search": true, "log in": true,
	"login": true, "sign in": true, "sign up": true, "my account": true,
	"next": true, "previous": true, "back": true, "close": true, "shop": true,
	"contact": true, "about": true, "blog": true, "checkout": true,
}

// boilerplate phrases are removed wherever they occur.
var boilerplate = regexp.MustCompile(`(?i)\b(` + strings.Join([]string{
	"read more", "continue reading", "learn more", "click here", "subscribe( now| to our newsletter)?",
	"sign up for our newsletter", "skip to (main )?content", "back to top", "follow us( on)?",
	"share (this|on)", "all rights reserved", "facebook", "twitter", "instagram", "pinterest",
	"linkedin", "youtube", "tiktok", "whatsapp",
}, "|") + `)\b[:.!]?`)

var removedElements = "script, style, iframe, frame, frameset, noscript, svg, embed, object, template, nav, header, footer, aside, form"

var textBlocks = "h1, h2, h3, h4, h5, h6, p, li, blockquote, td, th, dd, dt, figcaption"

// PageContent is the cleaned result of one HTML page.
type PageContent struct {
	Title string
	Text  string
	Links []string
	Feeds []string
}

// CleanHTML extracts readable text and raw hrefs from an HTML document.
// When selector matches, text is taken from it only; links are always
// collected from the whole page.
func CleanHTML(body []byte, selector string) (*PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	content := &PageContent{Title: strings.TrimSpace(doc.Find("title").First().Text())}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			content.Links = append(content.Links, href)
		}
	})
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, s *goquery.Selection) {
		kind, _ := s.Attr("type")
		href, ok := s.Attr("href")
		if ok && (strings.Contains(kind, "rss") || strings.Contains(kind, "atom")) {
			content.Feeds = append(content.Feeds, href)
		}
	})

	root := pickRoot(doc, selector)
	root.Find(removedElements).Remove()
	if content.Title == "" {
		content.Title = strings.TrimSpace(root.Find("h1").First().Text())
	}

	var blocks []string
	root.Find(textBlocks).Each(func(_ int, s *goquery.Selection) {
		// the outer block already carries nested block text
		if s.Find(textBlocks).Length() > 0 {
			return
		}
		blocks = append(blocks, s.Text())
	})
	if len(blocks) == 0 {
		blocks = strings.Split(root.Text(), "\n")
	}

	content.Text = dedupeSentences(cleanBlocks(blocks))
	return content, nil
}

func pickRoot(doc *goquery.Document, selector string) *goquery.Selection {
	if selector = strings.TrimSpace(selector); selector != "" {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	if sel := doc.Find(`main, article, [role="main"]`).First(); sel.Length() > 0 {
		return sel
	}
	return doc.Find("body")
}

func cleanBlocks(blocks []string) []string {
	var out []string
	for _, block := range blocks {
		block = strings.Join(strings.Fields(block), " ")
		if navigationLabels[strings.ToLower(strings.Trim(block, " .:|»›"))] {
			continue
		}
		block = boilerplate.ReplaceAllString(block, "")
		block = strings.Trim(strings.Join(strings.Fields(block), " "), " |·-")
		if len([]rune(block)) < 3 {
			continue
		}
		out = append(out, block)
	}
	return out
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// dedupeSentences keeps the first occurrence of every sentence, one output
// line per input block.
func dedupeSentences(blocks []string) string {
	seen := make(map[string]bool)
	var lines []string
	for _, block := range blocks {
		var kept []string
		for _, sentence := range splitSentences(block) {
			key := strings.ToLower(sentence)
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, sentence)
		}
		if len(kept) > 0 {
			lines = append(lines, strings.Join(kept, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func splitSentences(block string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(block, -1) {
		if s := strings.TrimSpace(block[last : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(block[last:]); s != "" {
		out = append(out, s)
	}
	return out
}
