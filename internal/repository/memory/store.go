package memory

import (
	"sync"

	"ai-shopassist-be/internal/entity"
)

// Store is the shared in-process state behind the memory repositories. It
// backs VECTOR_STORE=memory and the service tests.
type Store struct {
	mu         sync.RWMutex
	embeddings []*entity.Embedding
	contents   map[contentKey]*entity.StoreContent
	crawlJobs  map[string]*entity.CrawlJob
	pdfJobs    map[string]*entity.PdfJob
	nextJobId  int64
}

type contentKey struct {
	contentType entity.ContentType
	id          int64
}

func NewStore() *Store {
	return &Store{
		contents:  make(map[contentKey]*entity.StoreContent),
		crawlJobs: make(map[string]*entity.CrawlJob),
		pdfJobs:   make(map[string]*entity.PdfJob),
	}
}

func (s *Store) hasEmbeddings(t entity.ContentType, id int64) bool {
	for _, e := range s.embeddings {
		if e.ContentType == t && e.ContentId == id {
			return true
		}
	}
	return false
}

func (s *Store) countEmbeddings(match func(*entity.Embedding) bool) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.embeddings {
		if match(e) {
			n++
		}
	}
	return n
}

func (s *Store) jobId() int64 {
	s.nextJobId++
	return s.nextJobId
}
