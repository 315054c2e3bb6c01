package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxBodyBytes = 5 << 20

// Page is a fetched HTTP response.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

func (p *Page) IsHTML() bool {
	return p.ContentType == "" || strings.Contains(p.ContentType, "html")
}

// FetchError reports a failed fetch. StatusCode is 0 for transport errors.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher issues GET requests spaced by a token bucket limiter. One Fetcher
// serves one crawl session.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func NewFetcher(client *http.Client, delay time.Duration, userAgent string) *Fetcher {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
	}
}

// Fetch waits for the limiter and GETs rawURL. A non-2xx status is a
// FetchError, except that a protection check may still want the body, so
// the page is returned alongside the error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	page := &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: strings.ToLower(resp.Header.Get("Content-Type")),
		Body:        body,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return page, nil
}
