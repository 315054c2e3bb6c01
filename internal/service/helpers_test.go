package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/internal/settings"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/events"

	"github.com/stretchr/testify/require"
)

var errEmbedDown = &embedding.Error{Kind: embedding.KindStatus, StatusCode: 503, Message: "provider down"}

// fakeEmbedder returns a fixed vector, failing for texts containing failOn.
type fakeEmbedder struct {
	mu     sync.Mutex
	failOn string
	calls  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errEmbedDown
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// settingsSource serves a mutable settings document.
type settingsSource struct {
	mu      sync.Mutex
	current settings.Settings
}

func (s *settingsSource) Load(_ context.Context) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := s.current
	return &copied, nil
}

func (s *settingsSource) set(next settings.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
}

type enqueued struct {
	kind entity.JobKind
	key  string
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (p *recordingPublisher) Enqueue(_ context.Context, kind entity.JobKind, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, enqueued{kind: kind, key: key})
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

type testEnv struct {
	store       *memory.Store
	uowFactory  unitofwork.RepositoryFactory
	source      *settingsSource
	settings    *settings.Provider
	embedder    *fakeEmbedder
	vectorStore IVectorStoreService
	publisher   *recordingPublisher
	events      *recordingEvents
	logger      logger.ILogger
}

func defaultSettings() settings.Settings {
	return settings.Settings{
		APIKey:          "sk-test",
		BatchSize:       10,
		CommerceEnabled: true,
		ExcludedIDs:     map[entity.ContentType][]int64{},
		Crawl:           settings.CrawlLimits{MaxPages: 10, MaxDepth: 2},
		Upload:          settings.UploadLimits{MaxBytes: 1 << 20},
	}
}

func newTestEnv(t *testing.T, s settings.Settings) *testEnv {
	t.Helper()

	source := &settingsSource{current: s}
	provider, err := settings.NewProvider(context.Background(), source)
	require.NoError(t, err)

	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	embedder := &fakeEmbedder{}
	log := logger.NewNopLogger()

	return &testEnv{
		store:       store,
		uowFactory:  factory,
		source:      source,
		settings:    provider,
		embedder:    embedder,
		vectorStore: NewVectorStoreService(factory, embedder, log),
		publisher:   &recordingPublisher{},
		events:      &recordingEvents{},
		logger:      log,
	}
}

func (e *testEnv) seedContent(t *testing.T, items ...*entity.StoreContent) {
	t.Helper()
	repo := e.uowFactory.NewUnitOfWork(context.Background()).StoreContentRepository()
	for _, item := range items {
		require.NoError(t, repo.Save(context.Background(), item))
	}
}

func (e *testEnv) rows(t *testing.T, contentType entity.ContentType, id int64) []*entity.Embedding {
	t.Helper()
	rows, err := e.vectorStore.FetchByContent(context.Background(), contentType, id)
	require.NoError(t, err)
	return rows
}

func isEmbedFailure(err error) bool {
	var embedErr *embedding.Error
	return errors.As(err, &embedErr)
}
