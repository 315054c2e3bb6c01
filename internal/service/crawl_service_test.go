package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/pkg/crawler"
	"ai-shopassist-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSite struct {
	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

func newTestSite(t *testing.T, pages map[string]string) (*testSite, *httptest.Server) {
	t.Helper()
	s := &testSite{pages: pages, hits: make(map[string]int)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		body, ok := s.pages[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return s, server
}

func (s *testSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *testSite) setPage(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = body
}

const challengePage = `<html><head><title>Just a moment...</title></head>
<body><div id="cf-browser-verification">Checking your browser before accessing the shop.</div></body></html>`

func newCrawl(env *testEnv) ICrawlService {
	return newCrawlWindow(env, time.Hour)
}

func newCrawlWindow(env *testEnv, staleAfter time.Duration) ICrawlService {
	return NewCrawlService(
		env.uowFactory,
		env.vectorStore,
		crawler.New(crawler.Config{MinFrontier: 1}),
		memory.NewProtectionRegistry(),
		env.publisher,
		env.events,
		env.settings,
		staleAfter,
		env.logger,
	)
}

func TestCrawlSubmit_Idempotent(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	svc := newCrawl(env)
	ctx := context.Background()

	first, err := svc.Submit(ctx, &dto.CrawlRequest{URL: "https://Shop.Example/about/?utm_source=x"})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, &dto.CrawlRequest{URL: "https://shop.example/about"})
	require.NoError(t, err)

	assert.Equal(t, first.JobKey, second.JobKey)
	assert.Equal(t, "pending", second.Status)
	assert.Equal(t, "https://shop.example/about", second.Source)
	assert.Equal(t, 1, env.publisher.count())
}

func TestCrawlSubmit_InvalidURL(t *testing.T) {
	env := newTestEnv(t, defaultSettings())

	_, err := newCrawl(env).Submit(context.Background(), &dto.CrawlRequest{URL: "ftp://shop.example"})

	assert.True(t, errors.Is(err, ErrInvalidCrawlURL))
	assert.Zero(t, env.publisher.count())
}

func TestCrawlOptions_CappedBySettings(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	svc := newCrawl(env).(*crawlService)
	noFollow := false

	tests := []struct {
		name string
		req  dto.CrawlRequest
		want entity.CrawlOptions
	}{
		{
			name: "defaults",
			req:  dto.CrawlRequest{},
			want: entity.CrawlOptions{FollowLinks: true, MaxPages: 10, MaxDepth: 2},
		},
		{
			name: "lower limits kept",
			req:  dto.CrawlRequest{MaxPages: 3, MaxDepth: 1, FollowLinks: &noFollow},
			want: entity.CrawlOptions{FollowLinks: false, MaxPages: 3, MaxDepth: 1},
		},
		{
			name: "higher limits capped",
			req:  dto.CrawlRequest{MaxPages: 500, MaxDepth: 9},
			want: entity.CrawlOptions{FollowLinks: true, MaxPages: 10, MaxDepth: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.crawlOptions(&tt.req))
		})
	}
}

func TestCrawlRun_StoresPages(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	site, server := newTestSite(t, map[string]string{
		"/":      `<html><head><title>Shop</title></head><body><main><p>Welcome to the shop.</p><a href="/faq">FAQ</a></main></body></html>`,
		"/faq":   `<html><head><title>FAQ</title></head><body><main><p>Orders ship within two days.</p></main></body></html>`,
		"/other": `<html><body><p>never linked</p></body></html>`,
	})
	svc := newCrawl(env)
	ctx := context.Background()

	job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, job.JobKey))

	status, err := svc.Status(ctx, job.JobKey)
	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, 2, status.PagesCrawled)
	assert.Equal(t, 2, status.EmbeddingCount)
	assert.Zero(t, site.hitCount("/other"))

	rows, err := env.vectorStore.FetchByTypes(ctx, []entity.ContentType{entity.ContentTypeExternalURL})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, status.Source, row.OriginURL)
		assert.NotEmpty(t, row.SourceURL)
	}

	finished := env.events.last()
	require.NotNil(t, finished)
	assert.Equal(t, events.JobFinished, finished.EventType())
	assert.Equal(t, "completed", finished.Payload()["status"])

	// a recrawl replaces rows instead of adding to them
	_, err = svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, job.JobKey))
	rows, err = env.vectorStore.FetchByTypes(ctx, []entity.ContentType{entity.ContentTypeExternalURL})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCrawlRun_ClaimOnlyOnce(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	_, server := newTestSite(t, map[string]string{
		"/": `<html><body><main><p>Welcome to the shop.</p></main></body></html>`,
	})
	svc := newCrawl(env)
	ctx := context.Background()

	job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, job.JobKey))
	calls := env.embedder.callCount()

	require.NoError(t, svc.Run(ctx, job.JobKey))
	assert.Equal(t, calls, env.embedder.callCount(), "completed job is not run again")
}

func TestCrawlRun_BotProtectedSeed(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	site, server := newTestSite(t, map[string]string{"/": challengePage})
	svc := newCrawl(env)
	ctx := context.Background()

	job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, job.JobKey))

	status, err := svc.Status(ctx, job.JobKey)
	require.NoError(t, err)
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, string(entity.JobErrorBotProtection), status.ErrorType)
	assert.Contains(t, status.UserMessage, "bot protection")
	assert.Equal(t, 1, site.hitCount("/"))

	// the flag short-circuits later submissions without a fetch or enqueue
	again, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "failed", again.Status)
	assert.Equal(t, string(entity.JobErrorBotProtection), again.ErrorType)
	assert.Equal(t, 2, again.Attempts)
	assert.Equal(t, 1, site.hitCount("/"))
	assert.Equal(t, 1, env.publisher.count())

	// clearing the flag lets the seed be crawled again
	site.setPage("/", `<html><body><main><p>Welcome back to the shop.</p></main></body></html>`)
	cleared, err := svc.ClearProtection(ctx, job.JobKey)
	require.NoError(t, err)
	assert.True(t, cleared.Cleared)

	_, err = svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, 2, env.publisher.count())
	require.NoError(t, svc.Run(ctx, job.JobKey))
	status, err = svc.Status(ctx, job.JobKey)
	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)
}

func TestCrawlRun_NoContent(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	_, server := newTestSite(t, map[string]string{"/": `<html><body><main></main></body></html>`})
	svc := newCrawl(env)
	ctx := context.Background()

	job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, job.JobKey))

	status, err := svc.Status(ctx, job.JobKey)
	require.NoError(t, err)
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, string(entity.JobErrorNoContent), status.ErrorType)
}

func TestCrawlRun_FailedRecrawlKeepsRows(t *testing.T) {
	tests := []struct {
		name      string
		breakSite func(site *testSite, env *testEnv)
		wantError entity.JobErrorType
	}{
		{
			name: "page emptied",
			breakSite: func(site *testSite, _ *testEnv) {
				site.setPage("/", `<html><body><main></main></body></html>`)
			},
			wantError: entity.JobErrorNoContent,
		},
		{
			name: "embedding provider down",
			breakSite: func(site *testSite, env *testEnv) {
				site.setPage("/", `<html><body><main><p>Welcome to the broken shop.</p></main></body></html>`)
				env.embedder.failOn = "broken"
			},
			wantError: entity.JobErrorEmbeddingFailed,
		},
		{
			name: "seed turned into a challenge page",
			breakSite: func(site *testSite, _ *testEnv) {
				site.setPage("/", challengePage)
			},
			wantError: entity.JobErrorBotProtection,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, defaultSettings())
			site, server := newTestSite(t, map[string]string{
				"/": `<html><body><main><p>Welcome to the shop.</p></main></body></html>`,
			})
			svc := newCrawl(env)
			ctx := context.Background()

			job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
			require.NoError(t, err)
			require.NoError(t, svc.Run(ctx, job.JobKey))
			before, err := env.vectorStore.FetchByTypes(ctx, []entity.ContentType{entity.ContentTypeExternalURL})
			require.NoError(t, err)
			require.Len(t, before, 1)

			tt.breakSite(site, env)
			_, err = svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
			require.NoError(t, err)
			require.NoError(t, svc.Run(ctx, job.JobKey))

			status, err := svc.Status(ctx, job.JobKey)
			require.NoError(t, err)
			assert.Equal(t, "failed", status.Status)
			assert.Equal(t, string(tt.wantError), status.ErrorType)

			after, err := env.vectorStore.FetchByTypes(ctx, []entity.ContentType{entity.ContentTypeExternalURL})
			require.NoError(t, err)
			require.Len(t, after, 1)
			assert.Equal(t, before[0].Id, after[0].Id)
			assert.Contains(t, after[0].ChunkText, "Welcome to the shop.")
		})
	}
}

func TestCrawlSubmit_StaleJobRequeued(t *testing.T) {
	tests := []struct {
		name       string
		staleAfter time.Duration
		claim      bool
		wantQueued int
	}{
		{name: "fresh pending job", staleAfter: time.Hour, wantQueued: 1},
		{name: "stale pending job", staleAfter: 10 * time.Millisecond, wantQueued: 2},
		{name: "stale processing job", staleAfter: 10 * time.Millisecond, claim: true, wantQueued: 2},
		{name: "window disabled", staleAfter: 0, claim: true, wantQueued: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, defaultSettings())
			svc := newCrawlWindow(env, tt.staleAfter)
			ctx := context.Background()

			job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: "https://shop.example"})
			require.NoError(t, err)
			if tt.claim {
				claimed, err := env.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository().Claim(ctx, job.JobKey)
				require.NoError(t, err)
				require.True(t, claimed)
			}
			time.Sleep(30 * time.Millisecond)

			again, err := svc.Submit(ctx, &dto.CrawlRequest{URL: "https://shop.example"})

			require.NoError(t, err)
			assert.Equal(t, tt.wantQueued, env.publisher.count())
			if tt.wantQueued == 2 {
				assert.Equal(t, "pending", again.Status)
			}
		})
	}
}

func TestCrawlRecover(t *testing.T) {
	tests := []struct {
		name       string
		staleAfter time.Duration
		claim      bool
		run        bool
		wantQueued int
		wantStatus string
	}{
		{name: "pending job re-queued", staleAfter: time.Hour, wantQueued: 1, wantStatus: "pending"},
		{name: "stale processing job reset", staleAfter: 10 * time.Millisecond, claim: true, wantQueued: 1, wantStatus: "pending"},
		{name: "fresh processing job left alone", staleAfter: time.Hour, claim: true, wantQueued: 0, wantStatus: "processing"},
		{name: "finished job ignored", staleAfter: 10 * time.Millisecond, run: true, wantQueued: 0, wantStatus: "completed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, defaultSettings())
			_, server := newTestSite(t, map[string]string{
				"/": `<html><body><main><p>Welcome to the shop.</p></main></body></html>`,
			})
			svc := newCrawlWindow(env, tt.staleAfter)
			ctx := context.Background()

			job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
			require.NoError(t, err)
			if tt.claim {
				claimed, err := env.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository().Claim(ctx, job.JobKey)
				require.NoError(t, err)
				require.True(t, claimed)
			}
			if tt.run {
				require.NoError(t, svc.Run(ctx, job.JobKey))
			}
			time.Sleep(30 * time.Millisecond)
			queuedBefore := env.publisher.count()

			n, err := svc.Recover(ctx)

			require.NoError(t, err)
			assert.Equal(t, tt.wantQueued, n)
			assert.Equal(t, queuedBefore+tt.wantQueued, env.publisher.count())
			status, err := svc.Status(ctx, job.JobKey)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status.Status)

			if tt.wantQueued > 0 {
				require.NoError(t, svc.Run(ctx, job.JobKey))
				status, err = svc.Status(ctx, job.JobKey)
				require.NoError(t, err)
				assert.Equal(t, "completed", status.Status)
			}
		})
	}
}

func TestCrawlDelete(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	_, server := newTestSite(t, map[string]string{
		"/": `<html><body><main><p>Welcome to the shop.</p></main></body></html>`,
	})
	svc := newCrawl(env)
	ctx := context.Background()

	job, err := svc.Submit(ctx, &dto.CrawlRequest{URL: server.URL})
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx, job.JobKey))

	res, err := svc.Delete(ctx, job.JobKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedRows)

	_, err = svc.Status(ctx, job.JobKey)
	assert.True(t, errors.Is(err, ErrJobNotFound))
	_, err = svc.Delete(ctx, job.JobKey)
	assert.True(t, errors.Is(err, ErrJobNotFound))
}
