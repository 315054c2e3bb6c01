package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/contract"
)

type CrawlJobRepository struct {
	store *Store
}

func NewCrawlJobRepository(store *Store) contract.CrawlJobRepository {
	return &CrawlJobRepository{store: store}
}

func (r *CrawlJobRepository) Create(_ context.Context, job *entity.CrawlJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.crawlJobs[job.Key]; exists {
		return fmt.Errorf("crawl job %s already exists", job.Key)
	}
	job.Id = r.store.jobId()
	now := time.Now()
	job.CreatedAt, job.UpdatedAt = now, now
	copied := *job
	r.store.crawlJobs[job.Key] = &copied
	return nil
}

func (r *CrawlJobRepository) Save(_ context.Context, job *entity.CrawlJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if job.Id == 0 {
		job.Id = r.store.jobId()
	}
	job.UpdatedAt = time.Now()
	copied := *job
	r.store.crawlJobs[job.Key] = &copied
	return nil
}

func (r *CrawlJobRepository) FindByKey(_ context.Context, key string) (*entity.CrawlJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	job, ok := r.store.crawlJobs[key]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *CrawlJobRepository) FindAll(_ context.Context, limit, offset int) ([]*entity.CrawlJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	jobs := make([]*entity.CrawlJob, 0, len(r.store.crawlJobs))
	for _, j := range r.store.crawlJobs {
		copied := *j
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].UpdatedAt.After(jobs[j].UpdatedAt) })
	return paginate(jobs, limit, offset), nil
}

func (r *CrawlJobRepository) FindByStatus(_ context.Context, status entity.JobStatus, updatedBefore time.Time) ([]*entity.CrawlJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var jobs []*entity.CrawlJob
	for _, j := range r.store.crawlJobs {
		if j.Status != status || (!updatedBefore.IsZero() && !j.UpdatedAt.Before(updatedBefore)) {
			continue
		}
		copied := *j
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].UpdatedAt.Before(jobs[j].UpdatedAt) })
	return jobs, nil
}

func (r *CrawlJobRepository) Claim(_ context.Context, key string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	job, ok := r.store.crawlJobs[key]
	if !ok || job.Status != entity.JobStatusPending {
		return false, nil
	}
	job.Status = entity.JobStatusProcessing
	job.UpdatedAt = time.Now()
	return true, nil
}

func (r *CrawlJobRepository) DeleteByKey(_ context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.crawlJobs, key)
	return nil
}

type PdfJobRepository struct {
	store *Store
}

func NewPdfJobRepository(store *Store) contract.PdfJobRepository {
	return &PdfJobRepository{store: store}
}

func (r *PdfJobRepository) Create(_ context.Context, job *entity.PdfJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.pdfJobs[job.Key]; exists {
		return fmt.Errorf("pdf job %s already exists", job.Key)
	}
	job.Id = r.store.jobId()
	now := time.Now()
	job.CreatedAt, job.UpdatedAt = now, now
	copied := *job
	r.store.pdfJobs[job.Key] = &copied
	return nil
}

func (r *PdfJobRepository) Save(_ context.Context, job *entity.PdfJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if job.Id == 0 {
		job.Id = r.store.jobId()
	}
	job.UpdatedAt = time.Now()
	copied := *job
	r.store.pdfJobs[job.Key] = &copied
	return nil
}

func (r *PdfJobRepository) FindByKey(_ context.Context, key string) (*entity.PdfJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	job, ok := r.store.pdfJobs[key]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *PdfJobRepository) FindAll(_ context.Context, limit, offset int) ([]*entity.PdfJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	jobs := make([]*entity.PdfJob, 0, len(r.store.pdfJobs))
	for _, j := range r.store.pdfJobs {
		copied := *j
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].UpdatedAt.After(jobs[j].UpdatedAt) })
	return paginate(jobs, limit, offset), nil
}

func (r *PdfJobRepository) FindByStatus(_ context.Context, status entity.JobStatus, updatedBefore time.Time) ([]*entity.PdfJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var jobs []*entity.PdfJob
	for _, j := range r.store.pdfJobs {
		if j.Status != status || (!updatedBefore.IsZero() && !j.UpdatedAt.Before(updatedBefore)) {
			continue
		}
		copied := *j
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].UpdatedAt.Before(jobs[j].UpdatedAt) })
	return jobs, nil
}

func (r *PdfJobRepository) Claim(_ context.Context, key string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	job, ok := r.store.pdfJobs[key]
	if !ok || job.Status != entity.JobStatusPending {
		return false, nil
	}
	job.Status = entity.JobStatusProcessing
	job.UpdatedAt = time.Now()
	return true, nil
}

func (r *PdfJobRepository) DeleteByKey(_ context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.pdfJobs, key)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
