// Package crawler fetches a seed page and same-domain pages reachable from
// it, returning cleaned text per page.
package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// ErrNoContent is returned when the crawl produced no page with text.
var ErrNoContent = errors.New("crawl produced no readable content")

// Config holds per-process crawler settings.
type Config struct {
	RequestDelay time.Duration
	FetchTimeout time.Duration
	UserAgent    string
	// MinFrontier is the link count below which sitemap and feed discovery
	// is tried after the seed page.
	MinFrontier int
}

// Options are per-crawl settings.
type Options struct {
	FollowLinks bool
	Selector    string
	Filter      PathFilter
	MaxPages    int
	MaxDepth    int
}

// PageResult is one crawled page with text.
type PageResult struct {
	URL   string
	Title string
	Text  string
	Depth int
}

// Stats summarises a finished crawl.
type Stats struct {
	PagesCrawled  int
	PagesWithText int
	FailedFetches int
}

// PageHandler receives each page with text, in crawl order. Returning an
// error aborts the crawl.
type PageHandler func(ctx context.Context, page PageResult) error

type Crawler struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Crawler {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	if cfg.MinFrontier <= 0 {
		cfg.MinFrontier = 3
	}
	return &Crawler{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// CheckSeed fetches the seed once and checks it for a bot challenge. The
// page is returned so the crawl can reuse it.
func (c *Crawler) CheckSeed(ctx context.Context, fetcher *Fetcher, seed string) (*Page, error) {
	page, err := fetcher.Fetch(ctx, seed)
	if page != nil {
		if marker, found := DetectBotProtection(page.Body); found {
			return nil, &ProtectionError{URL: seed, Marker: marker}
		}
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

type frontierEntry struct {
	url   string
	depth int
}

// Crawl checks the seed, then walks same-domain links breadth first until
// MaxPages pages were fetched, MaxDepth is exceeded or the frontier is empty.
func (c *Crawler) Crawl(ctx context.Context, seed string, opts Options, handle PageHandler) (Stats, error) {
	var stats Stats

	normalizedSeed, err := NormalizeURL(seed)
	if err != nil {
		return stats, err
	}
	seedURL, _ := url.Parse(normalizedSeed)
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}

	fetcher := NewFetcher(c.client, c.cfg.RequestDelay, c.cfg.UserAgent)
	seedPage, err := c.CheckSeed(ctx, fetcher, normalizedSeed)
	if err != nil {
		return stats, err
	}

	visited := map[string]bool{normalizedSeed: true}
	queue := []frontierEntry{}
	enqueue := func(raw string, base *url.URL, depth int) {
		if !opts.FollowLinks || depth > opts.MaxDepth {
			return
		}
		link, ok := ResolveLink(base, raw)
		if !ok || visited[link] {
			return
		}
		u, _ := url.Parse(link)
		if !opts.Filter.Allows(u.Path) {
			return
		}
		visited[link] = true
		queue = append(queue, frontierEntry{url: link, depth: depth})
	}

	process := func(page *Page, entry frontierEntry) error {
		stats.PagesCrawled++
		if !page.IsHTML() {
			return nil
		}
		content, err := CleanHTML(page.Body, opts.Selector)
		if err != nil {
			return nil
		}

		base, err := url.Parse(page.FinalURL)
		if err != nil || !SameDomain(seedURL, base) {
			base = seedURL
		}
		for _, href := range content.Links {
			enqueue(href, base, entry.depth+1)
		}

		if entry.depth == 0 && opts.FollowLinks && len(queue) < c.cfg.MinFrontier {
			var feeds []string
			for _, f := range content.Feeds {
				if abs, err := base.Parse(f); err == nil {
					feeds = append(feeds, abs.String())
				}
			}
			d := &discoverer{fetcher: fetcher}
			for _, found := range d.Discover(ctx, seedURL, feeds, opts.MaxPages*2) {
				enqueue(found, seedURL, 1)
			}
		}

		if content.Text == "" {
			return nil
		}
		stats.PagesWithText++
		return handle(ctx, PageResult{URL: entry.url, Title: content.Title, Text: content.Text, Depth: entry.depth})
	}

	if err := process(seedPage, frontierEntry{url: normalizedSeed}); err != nil {
		return stats, err
	}

	for len(queue) > 0 && stats.PagesCrawled < opts.MaxPages {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		entry := queue[0]
		queue = queue[1:]

		page, err := fetcher.Fetch(ctx, entry.url)
		if err != nil {
			stats.FailedFetches++
			continue
		}
		if err := process(page, entry); err != nil {
			return stats, err
		}
	}

	if stats.PagesWithText == 0 {
		return stats, ErrNoContent
	}
	return stats, nil
}
