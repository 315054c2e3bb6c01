package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/internal/settings"
	"ai-shopassist-be/pkg/crawler"
	"ai-shopassist-be/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrInvalidCrawlURL = errors.New("invalid crawl url")

type ICrawlService interface {
	Submit(ctx context.Context, req *dto.CrawlRequest) (*dto.JobStatusResponse, error)
	Status(ctx context.Context, key string) (*dto.JobStatusResponse, error)
	List(ctx context.Context, limit, offset int) ([]*dto.JobStatusResponse, error)
	Delete(ctx context.Context, key string) (*dto.DeleteJobResponse, error)
	DeleteURL(ctx context.Context, rawURL string) (*dto.DeleteURLResponse, error)
	ClearProtection(ctx context.Context, key string) (*dto.ClearProtectionResponse, error)
	Run(ctx context.Context, key string) error
	Recover(ctx context.Context) (int, error)
}

type crawlService struct {
	uowFactory  unitofwork.RepositoryFactory
	vectorStore IVectorStoreService
	crawler     *crawler.Crawler
	protection  contract.ProtectionRegistry
	publisher   IPublisherService
	events      EventPublisher
	settings    *settings.Provider
	staleAfter  time.Duration
	logger      logger.ILogger
}

func NewCrawlService(
	uowFactory unitofwork.RepositoryFactory,
	vectorStore IVectorStoreService,
	crawler *crawler.Crawler,
	protection contract.ProtectionRegistry,
	publisher IPublisherService,
	events EventPublisher,
	settings *settings.Provider,
	staleAfter time.Duration,
	logger logger.ILogger,
) ICrawlService {
	return &crawlService{
		uowFactory:  uowFactory,
		vectorStore: vectorStore,
		crawler:     crawler,
		protection:  protection,
		publisher:   publisher,
		events:      events,
		settings:    settings,
		staleAfter:  staleAfter,
		logger:      logger,
	}
}

// Submit creates or reuses the job for a seed URL. A job still pending or
// processing is returned untouched unless it has been idle for the stale
// window; a finished or stale one is reset and re-queued. A seed already
// known to be bot protected fails without any fetch.
func (s *crawlService) Submit(ctx context.Context, req *dto.CrawlRequest) (*dto.JobStatusResponse, error) {
	normalized, err := crawler.NormalizeURL(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCrawlURL, err)
	}
	key := jobKey([]byte(normalized))
	opts := s.crawlOptions(req)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.CrawlJobRepository()

	job, err := repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	switch {
	case job == nil:
		job = &entity.CrawlJob{
			Key:           key,
			URL:           req.URL,
			NormalizedURL: normalized,
			Options:       opts,
			JobState:      entity.JobState{Status: entity.JobStatusPending},
		}
		if err := repo.Create(ctx, job); err != nil {
			// lost a race with a concurrent submission of the same URL
			existing, findErr := repo.FindByKey(ctx, key)
			if findErr != nil || existing == nil {
				return nil, err
			}
			return s.toStatus(existing), nil
		}
	case !job.Status.IsTerminal() && !job.IsStale(time.Now(), s.staleAfter):
		return s.toStatus(job), nil
	default:
		if !job.Status.IsTerminal() {
			s.logger.Warn("CRAWL", "Stale crawl job re-queued", map[string]interface{}{
				"job_key": key,
				"status":  string(job.Status),
				"idle":    time.Since(job.UpdatedAt).String(),
			})
		}
		job.Reset()
		job.URL = req.URL
		job.Options = opts
		job.PagesCrawled = 0
		if err := repo.Save(ctx, job); err != nil {
			return nil, err
		}
	}

	flagged, err := s.protection.IsFlagged(ctx, normalized)
	if err != nil {
		s.logger.Warn("CRAWL", "Bot protection lookup failed, crawling anyway", map[string]interface{}{
			"url":   normalized,
			"error": err.Error(),
		})
	}
	if flagged {
		s.logger.Info("CRAWL", "Seed is flagged as bot protected, skipping crawl", map[string]interface{}{
			"url": normalized,
		})
		if err := s.fail(ctx, job, newJobError(entity.JobErrorBotProtection, errors.New("seed previously detected as bot protected"))); err != nil {
			return nil, err
		}
		return s.toStatus(job), nil
	}

	if err := s.publisher.Enqueue(ctx, entity.JobKindCrawl, key); err != nil {
		if failErr := s.fail(ctx, job, newJobError(entity.JobErrorInternal, err)); failErr != nil {
			return nil, failErr
		}
		return nil, fmt.Errorf("enqueue crawl job: %w", err)
	}

	s.logger.Info("CRAWL", "Crawl job queued", map[string]interface{}{
		"job_key":      key,
		"url":          normalized,
		"follow_links": opts.FollowLinks,
		"max_pages":    opts.MaxPages,
		"max_depth":    opts.MaxDepth,
	})
	return s.toStatus(job), nil
}

// crawlOptions applies the store crawl limits. Requested limits can only
// lower them.
func (s *crawlService) crawlOptions(req *dto.CrawlRequest) entity.CrawlOptions {
	limits := s.settings.Current().Crawl
	opts := entity.CrawlOptions{
		FollowLinks:  true,
		Selector:     req.Selector,
		IncludePaths: req.IncludePaths,
		ExcludePaths: req.ExcludePaths,
		MaxPages:     limits.MaxPages,
		MaxDepth:     limits.MaxDepth,
	}
	if req.FollowLinks != nil {
		opts.FollowLinks = *req.FollowLinks
	}
	if req.MaxPages > 0 && (opts.MaxPages <= 0 || req.MaxPages < opts.MaxPages) {
		opts.MaxPages = req.MaxPages
	}
	if req.MaxDepth > 0 && (opts.MaxDepth <= 0 || req.MaxDepth < opts.MaxDepth) {
		opts.MaxDepth = req.MaxDepth
	}
	return opts
}

// Run executes a queued crawl job. Pages are embedded as they arrive but
// nothing is written until the crawl succeeds; then the rows under the seed
// are swapped for the new ones in one transaction.
func (s *crawlService) Run(ctx context.Context, key string) error {
	ctx, span := otel.Tracer("ingestion").Start(ctx, "crawl.Run",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("job.key", key)))
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	claimed, err := uow.CrawlJobRepository().Claim(ctx, key)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Debug("CRAWL", "Job not claimable, skipping", map[string]interface{}{"job_key": key})
		return nil
	}

	job, err := uow.CrawlJobRepository().FindByKey(ctx, key)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}
	span.SetAttributes(attribute.String("crawl.seed", job.NormalizedURL))

	var (
		rows    []*entity.Embedding
		pages   []string
		lastErr error
	)
	handle := func(ctx context.Context, page crawler.PageResult) error {
		text := page.Text
		if page.Title != "" {
			text = page.Title + "\n" + text
		}
		embedded, err := s.vectorStore.EmbedChunks(ctx, entity.ContentTypeExternalURL, job.Id,
			utils.SplitSentences(text, utils.DefaultChunkSize),
			&entity.Provenance{SourceURL: page.URL, OriginURL: job.NormalizedURL},
		)
		if err != nil {
			lastErr = err
			s.logger.Warn("CRAWL", "Failed to embed page", map[string]interface{}{
				"job_key": key,
				"page":    page.URL,
				"error":   err.Error(),
			})
			return nil
		}
		rows = append(rows, embedded...)
		pages = append(pages, page.URL)
		return nil
	}

	stats, err := s.crawler.Crawl(ctx, job.NormalizedURL, crawler.Options{
		FollowLinks: job.Options.FollowLinks,
		Selector:    job.Options.Selector,
		Filter:      crawler.PathFilter{Include: job.Options.IncludePaths, Exclude: job.Options.ExcludePaths},
		MaxPages:    job.Options.MaxPages,
		MaxDepth:    job.Options.MaxDepth,
	}, handle)
	job.PagesCrawled = stats.PagesCrawled
	span.SetAttributes(attribute.Int("crawl.pages", stats.PagesCrawled))

	if err != nil {
		var protection *crawler.ProtectionError
		if errors.As(err, &protection) {
			if flagErr := s.protection.Flag(ctx, job.NormalizedURL, protection.Marker); flagErr != nil {
				s.logger.Error("CRAWL", "Failed to flag bot protected seed", map[string]interface{}{
					"url":   job.NormalizedURL,
					"error": flagErr.Error(),
				})
			}
		}
		span.SetStatus(codes.Error, err.Error())
		return s.fail(ctx, job, classifyJobError(err))
	}

	if len(rows) == 0 {
		cause := lastErr
		if cause == nil {
			cause = crawler.ErrNoContent
		}
		span.SetStatus(codes.Error, cause.Error())
		return s.fail(ctx, job, classifyJobError(cause))
	}

	replaced, err := s.vectorStore.Replace(ctx, ReplaceScope{OriginURL: job.NormalizedURL, SourceURLs: pages}, rows)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return s.fail(ctx, job, newJobError(entity.JobErrorStorageFailed, err))
	}
	stored := len(rows)

	if err := job.Complete(stored); err != nil {
		return err
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository().Save(ctx, job); err != nil {
		return err
	}

	s.logger.Info("CRAWL", "Crawl job completed", map[string]interface{}{
		"job_key":        key,
		"pages_crawled":  stats.PagesCrawled,
		"pages_text":     stats.PagesWithText,
		"failed_fetches": stats.FailedFetches,
		"chunks":         stored,
		"replaced_rows":  replaced,
	})
	announceFinished(ctx, s.events, s.logger, entity.JobKindCrawl, key, job.JobState)
	return nil
}

// Recover re-queues the jobs a previous process left behind: every pending
// job, and processing jobs idle for longer than the stale window.
func (s *crawlService) Recover(ctx context.Context) (int, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository()
	jobs, err := repo.FindByStatus(ctx, entity.JobStatusPending, time.Time{})
	if err != nil {
		return 0, err
	}
	if s.staleAfter > 0 {
		stale, err := repo.FindByStatus(ctx, entity.JobStatusProcessing, time.Now().Add(-s.staleAfter))
		if err != nil {
			return 0, err
		}
		for _, job := range stale {
			job.Reset()
			if err := repo.Save(ctx, job); err != nil {
				return 0, err
			}
		}
		jobs = append(jobs, stale...)
	}

	for i, job := range jobs {
		if err := s.publisher.Enqueue(ctx, entity.JobKindCrawl, job.Key); err != nil {
			return i, fmt.Errorf("re-queue crawl job %s: %w", job.Key, err)
		}
	}
	if len(jobs) > 0 {
		s.logger.Info("CRAWL", "Unfinished crawl jobs re-queued", map[string]interface{}{
			"count": len(jobs),
		})
	}
	return len(jobs), nil
}

// fail records a terminal failure. The job error itself is not returned; it
// lives in the job record.
func (s *crawlService) fail(ctx context.Context, job *entity.CrawlJob, jobErr *JobError) error {
	if err := job.Fail(jobErr.Type, jobErr.Error()); err != nil {
		return err
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository().Save(ctx, job); err != nil {
		return err
	}

	s.logger.Warn("CRAWL", "Crawl job failed", map[string]interface{}{
		"job_key":    job.Key,
		"url":        job.NormalizedURL,
		"error_type": string(jobErr.Type),
		"error":      jobErr.Error(),
		"attempts":   job.Attempts,
	})
	announceFinished(ctx, s.events, s.logger, entity.JobKindCrawl, job.Key, job.JobState)
	return nil
}

func (s *crawlService) Status(ctx context.Context, key string) (*dto.JobStatusResponse, error) {
	job, err := s.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository().FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return s.toStatus(job), nil
}

func (s *crawlService) List(ctx context.Context, limit, offset int) ([]*dto.JobStatusResponse, error) {
	jobs, err := s.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository().FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.JobStatusResponse, 0, len(jobs))
	for _, job := range jobs {
		res = append(res, s.toStatus(job))
	}
	return res, nil
}

// Delete removes a crawl job and every row stored under its seed.
func (s *crawlService) Delete(ctx context.Context, key string) (*dto.DeleteJobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.CrawlJobRepository().FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	deleted, err := s.vectorStore.DeleteByProvenance(ctx, job.NormalizedURL, true)
	if err != nil {
		return nil, err
	}
	if err := uow.CrawlJobRepository().DeleteByKey(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info("CRAWL", "Crawl job deleted", map[string]interface{}{
		"job_key":      key,
		"deleted_rows": deleted,
	})
	return &dto.DeleteJobResponse{JobKey: key, DeletedRows: deleted}, nil
}

// DeleteURL removes the rows of one crawled page.
func (s *crawlService) DeleteURL(ctx context.Context, rawURL string) (*dto.DeleteURLResponse, error) {
	normalized, err := crawler.NormalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCrawlURL, err)
	}
	deleted, err := s.vectorStore.DeleteBySourceURL(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteURLResponse{URL: normalized, DeletedRows: deleted}, nil
}

func (s *crawlService) ClearProtection(ctx context.Context, key string) (*dto.ClearProtectionResponse, error) {
	job, err := s.uowFactory.NewUnitOfWork(ctx).CrawlJobRepository().FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	cleared, err := s.protection.Clear(ctx, job.NormalizedURL)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CRAWL", "Bot protection flag cleared", map[string]interface{}{
		"url":     job.NormalizedURL,
		"cleared": cleared,
	})
	return &dto.ClearProtectionResponse{URL: job.NormalizedURL, Cleared: cleared}, nil
}

func (s *crawlService) toStatus(job *entity.CrawlJob) *dto.JobStatusResponse {
	res := jobStatus(entity.JobKindCrawl, job.Key, job.NormalizedURL, job.JobState)
	res.PagesCrawled = job.PagesCrawled
	return res
}
