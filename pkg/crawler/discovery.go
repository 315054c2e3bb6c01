package crawler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

const maxSitemaps = 10

var (
	defaultSitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml", "/wp-sitemap.xml"}
	defaultFeedPaths    = []string{"/feed", "/rss.xml", "/feed.xml", "/atom.xml", "/index.xml", "/rss"}
)

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

type urlSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// discoverer finds candidate URLs for a site from robots.txt sitemaps and,
// failing that, from its feeds.
type discoverer struct {
	fetcher *Fetcher
}

// Discover returns page URLs from sitemaps, or from feeds when no sitemap
// yields anything. limit caps the result; extraFeeds are feed links the
// seed page advertised.
func (d *discoverer) Discover(ctx context.Context, site *url.URL, extraFeeds []string, limit int) []string {
	urls := d.fromSitemaps(ctx, site, limit)
	if len(urls) > 0 {
		return urls
	}
	return d.fromFeeds(ctx, site, extraFeeds, limit)
}

func (d *discoverer) fromSitemaps(ctx context.Context, site *url.URL, limit int) []string {
	queue := d.robotsSitemaps(ctx, site)
	if len(queue) == 0 {
		for _, p := range defaultSitemapPaths {
			queue = append(queue, site.ResolveReference(&url.URL{Path: p}).String())
		}
	}

	var out []string
	visited := make(map[string]bool)
	for len(queue) > 0 && len(visited) < maxSitemaps && len(out) < limit {
		sitemapURL := queue[0]
		queue = queue[1:]
		if visited[sitemapURL] {
			continue
		}
		visited[sitemapURL] = true

		page, err := d.fetcher.Fetch(ctx, sitemapURL)
		if err != nil {
			continue
		}

		var index sitemapIndex
		if err := xml.Unmarshal(page.Body, &index); err == nil && len(index.Sitemaps) > 0 {
			for _, s := range index.Sitemaps {
				if loc := strings.TrimSpace(s.Loc); loc != "" {
					queue = append(queue, loc)
				}
			}
			continue
		}

		var set urlSet
		if err := xml.Unmarshal(page.Body, &set); err != nil {
			continue
		}
		for _, u := range set.URLs {
			if loc := strings.TrimSpace(u.Loc); loc != "" {
				out = append(out, loc)
				if len(out) >= limit {
					break
				}
			}
		}
	}
	return out
}

func (d *discoverer) robotsSitemaps(ctx context.Context, site *url.URL) []string {
	page, err := d.fetcher.Fetch(ctx, site.ResolveReference(&url.URL{Path: "/robots.txt"}).String())
	if err != nil {
		return nil
	}
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(page.Body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			if v := strings.TrimSpace(value); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (d *discoverer) fromFeeds(ctx context.Context, site *url.URL, extraFeeds []string, limit int) []string {
	candidates := append([]string(nil), extraFeeds...)
	for _, p := range defaultFeedPaths {
		candidates = append(candidates, site.ResolveReference(&url.URL{Path: p}).String())
	}

	parser := gofeed.NewParser()
	for _, feedURL := range candidates {
		page, err := d.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			continue
		}
		feed, err := parser.Parse(bytes.NewReader(page.Body))
		if err != nil || len(feed.Items) == 0 {
			continue
		}
		var out []string
		for _, item := range feed.Items {
			if item.Link != "" {
				out = append(out, item.Link)
			}
			if len(out) >= limit {
				break
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
