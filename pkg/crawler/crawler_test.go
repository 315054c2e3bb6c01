package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type site struct {
	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

func newSite(pages map[string]string) (*site, *httptest.Server) {
	s := &site{pages: pages, hits: make(map[string]int)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		body, ok := s.pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else if len(r.URL.Path) > 4 && r.URL.Path[len(r.URL.Path)-4:] == ".xml" {
			w.Header().Set("Content-Type", "application/xml")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		_, _ = w.Write([]byte(body))
	}))
	return s, server
}

func (s *site) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func htmlPage(text string, links ...string) string {
	body := "<html><body><main><p>" + text + "</p>"
	for _, l := range links {
		body += fmt.Sprintf(`<a href="%s">link</a>`, l)
	}
	return body + "</main></body></html>"
}

func collect(pages *[]PageResult) PageHandler {
	return func(_ context.Context, page PageResult) error {
		*pages = append(*pages, page)
		return nil
	}
}

func TestCrawl_FollowsSameDomainLinks(t *testing.T) {
	s, server := newSite(map[string]string{
		"/":           htmlPage("Welcome to the shop.", "/about", "/blog", "https://elsewhere.example.org/", "mailto:x@y.z", "#top"),
		"/about":      htmlPage("About our store.", "/about/team"),
		"/blog":       htmlPage("Latest news.", "/about"),
		"/about/team": htmlPage("Meet the team."),
	})
	defer server.Close()

	var pages []PageResult
	stats, err := New(Config{MinFrontier: 1}).Crawl(context.Background(), server.URL, Options{FollowLinks: true, MaxPages: 10, MaxDepth: 3}, collect(&pages))

	require.NoError(t, err)
	assert.Equal(t, 4, stats.PagesCrawled)
	require.Len(t, pages, 4)
	assert.Equal(t, server.URL+"/", pages[0].URL)
	assert.Equal(t, "Meet the team.", pages[3].Text)
	assert.Equal(t, 2, pages[3].Depth)
	assert.Equal(t, 1, s.hitCount("/about"), "pages are fetched once")
}

func TestCrawl_RespectsLimits(t *testing.T) {
	_, server := newSite(map[string]string{
		"/":       htmlPage("Seed page text.", "/a", "/b", "/c"),
		"/a":      htmlPage("Page a.", "/a/deep"),
		"/b":      htmlPage("Page b."),
		"/c":      htmlPage("Page c."),
		"/a/deep": htmlPage("Too deep."),
	})
	defer server.Close()

	var pages []PageResult
	stats, err := New(Config{MinFrontier: 1}).Crawl(context.Background(), server.URL, Options{FollowLinks: true, MaxPages: 3, MaxDepth: 1}, collect(&pages))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PagesCrawled)

	pages = nil
	_, err = New(Config{MinFrontier: 1}).Crawl(context.Background(), server.URL, Options{FollowLinks: true, MaxPages: 10, MaxDepth: 1}, collect(&pages))
	require.NoError(t, err)
	for _, p := range pages {
		assert.NotEqual(t, "Too deep.", p.Text)
	}
	assert.Len(t, pages, 4)
}

func TestCrawl_RequestDelay(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration
	}{
		{name: "spaced fetches", delay: 80 * time.Millisecond},
		{name: "no delay", delay: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := map[string]string{
				"/":  htmlPage("Seed page text.", "/a", "/b"),
				"/a": htmlPage("Page a."),
				"/b": htmlPage("Page b."),
			}
			var (
				mu    sync.Mutex
				times []time.Time
			)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				times = append(times, time.Now())
				mu.Unlock()
				body, ok := pages[r.URL.Path]
				if !ok {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			var got []PageResult
			_, err := New(Config{MinFrontier: 1, RequestDelay: tt.delay}).Crawl(context.Background(), server.URL,
				Options{FollowLinks: true, MaxPages: 3, MaxDepth: 1}, collect(&got))

			require.NoError(t, err)
			require.Len(t, got, 3)
			mu.Lock()
			defer mu.Unlock()
			require.Len(t, times, 3)
			for i := 1; i < len(times); i++ {
				gap := times[i].Sub(times[i-1])
				assert.GreaterOrEqual(t, gap, tt.delay-5*time.Millisecond, "gap before request %d", i)
			}
		})
	}
}

func TestCrawl_IncludeExclude(t *testing.T) {
	_, server := newSite(map[string]string{
		"/":              htmlPage("Seed.", "/help/returns", "/help/internal", "/shop"),
		"/help/returns":  htmlPage("Returns are free."),
		"/help/internal": htmlPage("Internal notes."),
		"/shop":          htmlPage("Shop page."),
	})
	defer server.Close()

	var pages []PageResult
	opts := Options{
		FollowLinks: true, MaxPages: 10, MaxDepth: 2,
		Filter: PathFilter{Include: []string{"/help"}, Exclude: []string{"/help/internal"}},
	}
	_, err := New(Config{MinFrontier: 1}).Crawl(context.Background(), server.URL, opts, collect(&pages))

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "Returns are free.", pages[1].Text)
}

func TestCrawl_SitemapFallback(t *testing.T) {
	s, server := newSite(map[string]string{
		"/":           htmlPage("Seed without links."),
		"/robots.txt": "User-agent: *\nSitemap: /sitemap_index.xml\n",
	})
	defer server.Close()
	s.pages["/robots.txt"] = "User-agent: *\nSitemap: " + server.URL + "/sitemap_index.xml\n"
	s.pages["/sitemap_index.xml"] = `<?xml version="1.0"?><sitemapindex><sitemap><loc>` + server.URL + `/pages.xml</loc></sitemap></sitemapindex>`
	s.pages["/pages.xml"] = `<?xml version="1.0"?><urlset><url><loc>` + server.URL + `/faq</loc></url></urlset>`
	s.pages["/faq"] = htmlPage("Frequently asked questions.")

	var pages []PageResult
	_, err := New(Config{}).Crawl(context.Background(), server.URL, Options{FollowLinks: true, MaxPages: 5, MaxDepth: 2}, collect(&pages))

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, server.URL+"/faq", pages[1].URL)
}

func TestCrawl_FeedFallback(t *testing.T) {
	s, server := newSite(map[string]string{
		"/": htmlPage("Seed without links."),
	})
	defer server.Close()
	s.pages["/feed"] = `<?xml version="1.0"?><rss version="2.0"><channel><title>Blog</title>
<item><title>Post</title><link>` + server.URL + `/post-1</link></item></channel></rss>`
	s.pages["/post-1"] = htmlPage("A post from the feed.")

	var pages []PageResult
	_, err := New(Config{}).Crawl(context.Background(), server.URL, Options{FollowLinks: true, MaxPages: 5, MaxDepth: 2}, collect(&pages))

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "A post from the feed.", pages[1].Text)
}

func TestCrawl_BotProtectedSeed(t *testing.T) {
	_, server := newSite(map[string]string{
		"/": "<html><body><h1>Just a moment</h1><p>Checking your browser. Performance and security by Cloudflare</p></body></html>",
	})
	defer server.Close()

	var pages []PageResult
	stats, err := New(Config{}).Crawl(context.Background(), server.URL, Options{FollowLinks: true, MaxPages: 5}, collect(&pages))

	var protection *ProtectionError
	require.True(t, errors.As(err, &protection))
	assert.Equal(t, 0, stats.PagesCrawled)
	assert.Empty(t, pages)
}

func TestCrawl_SeedFetchFailure(t *testing.T) {
	_, server := newSite(map[string]string{})
	defer server.Close()

	_, err := New(Config{}).Crawl(context.Background(), server.URL+"/missing", Options{MaxPages: 1}, func(context.Context, PageResult) error { return nil })

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestCrawl_NoContent(t *testing.T) {
	_, server := newSite(map[string]string{"/": "<html><body><nav>Home</nav></body></html>"})
	defer server.Close()

	_, err := New(Config{}).Crawl(context.Background(), server.URL, Options{MaxPages: 1}, func(context.Context, PageResult) error { return nil })
	assert.ErrorIs(t, err, ErrNoContent)
}
