package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/internal/settings"
	pdfextractor "ai-shopassist-be/pkg/extractor/pdf"
	"ai-shopassist-be/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidUpload  = errors.New("invalid pdf upload")
	ErrUploadTooLarge = errors.New("pdf upload exceeds the size limit")
)

type IPdfService interface {
	Upload(ctx context.Context, req *dto.UploadPdfRequest) (*dto.JobStatusResponse, error)
	Status(ctx context.Context, key string) (*dto.JobStatusResponse, error)
	List(ctx context.Context, limit, offset int) ([]*dto.JobStatusResponse, error)
	Delete(ctx context.Context, key string) (*dto.DeleteJobResponse, error)
	Run(ctx context.Context, key string) error
	Recover(ctx context.Context) (int, error)
}

type pdfService struct {
	uowFactory  unitofwork.RepositoryFactory
	vectorStore IVectorStoreService
	extractor   *pdfextractor.Extractor
	publisher   IPublisherService
	events      EventPublisher
	settings    *settings.Provider
	uploadDir   string
	staleAfter  time.Duration
	logger      logger.ILogger
}

func NewPdfService(
	uowFactory unitofwork.RepositoryFactory,
	vectorStore IVectorStoreService,
	extractor *pdfextractor.Extractor,
	publisher IPublisherService,
	events EventPublisher,
	settings *settings.Provider,
	uploadDir string,
	staleAfter time.Duration,
	logger logger.ILogger,
) IPdfService {
	return &pdfService{
		uowFactory:  uowFactory,
		vectorStore: vectorStore,
		extractor:   extractor,
		publisher:   publisher,
		events:      events,
		settings:    settings,
		uploadDir:   uploadDir,
		staleAfter:  staleAfter,
		logger:      logger,
	}
}

func (s *pdfService) validate(req *dto.UploadPdfRequest) error {
	if !strings.EqualFold(filepath.Ext(req.FileName), ".pdf") {
		return fmt.Errorf("%w: only .pdf files are accepted", ErrInvalidUpload)
	}
	if len(req.Data) == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if limit := s.settings.Current().Upload.MaxBytes; limit > 0 && int64(len(req.Data)) > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrUploadTooLarge, len(req.Data), limit)
	}
	if !bytes.HasPrefix(req.Data, []byte("%PDF-")) {
		return fmt.Errorf("%w: file is not a pdf document", ErrInvalidUpload)
	}
	return nil
}

// Upload stores the file under its content hash and queues extraction.
// Uploading the same bytes again reuses the job unless it finished or sat
// idle for the stale window.
func (s *pdfService) Upload(ctx context.Context, req *dto.UploadPdfRequest) (*dto.JobStatusResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	key := jobKey(req.Data)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PdfJobRepository()

	job, err := repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if job != nil && !job.Status.IsTerminal() {
		if !job.IsStale(time.Now(), s.staleAfter) {
			return s.toStatus(job), nil
		}
		s.logger.Warn("PDF", "Stale pdf job re-queued", map[string]interface{}{
			"job_key": key,
			"status":  string(job.Status),
			"idle":    time.Since(job.UpdatedAt).String(),
		})
	}

	path := filepath.Join(s.uploadDir, key+".pdf")
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, req.Data, 0o600); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	if job == nil {
		job = &entity.PdfJob{
			Key:      key,
			FileName: filepath.Base(req.FileName),
			FilePath: path,
			FileSize: int64(len(req.Data)),
			JobState: entity.JobState{Status: entity.JobStatusPending},
		}
		if err := repo.Create(ctx, job); err != nil {
			existing, findErr := repo.FindByKey(ctx, key)
			if findErr != nil || existing == nil {
				return nil, err
			}
			return s.toStatus(existing), nil
		}
	} else {
		job.Reset()
		job.FileName = filepath.Base(req.FileName)
		job.FilePath = path
		job.FileSize = int64(len(req.Data))
		if err := repo.Save(ctx, job); err != nil {
			return nil, err
		}
	}

	if err := s.publisher.Enqueue(ctx, entity.JobKindPDF, key); err != nil {
		if failErr := s.fail(ctx, job, newJobError(entity.JobErrorInternal, err)); failErr != nil {
			return nil, failErr
		}
		return nil, fmt.Errorf("enqueue pdf job: %w", err)
	}

	s.logger.Info("PDF", "PDF job queued", map[string]interface{}{
		"job_key":   key,
		"file_name": job.FileName,
		"size":      job.FileSize,
	})
	return s.toStatus(job), nil
}

// Run extracts, chunks and stores a queued PDF. On failure the uploaded file
// is removed along with anything stored for the job.
func (s *pdfService) Run(ctx context.Context, key string) error {
	ctx, span := otel.Tracer("ingestion").Start(ctx, "pdf.Run",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("job.key", key)))
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	claimed, err := uow.PdfJobRepository().Claim(ctx, key)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	job, err := uow.PdfJobRepository().FindByKey(ctx, key)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	text, err := s.extractor.ExtractFile(job.FilePath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return s.fail(ctx, job, classifyJobError(err))
	}

	chunks := utils.SplitSentences(text, utils.DefaultChunkSize)
	if job.FileName != "" && len(chunks) > 0 {
		chunks[0] = "Document: " + job.FileName + "\n" + chunks[0]
	}
	rows, err := s.vectorStore.EmbedChunks(ctx, entity.ContentTypePDF, job.Id, chunks, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return s.fail(ctx, job, classifyJobError(err))
	}
	scope := ReplaceScope{ContentType: entity.ContentTypePDF, ContentId: job.Id}
	if _, err := s.vectorStore.Replace(ctx, scope, rows); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return s.fail(ctx, job, newJobError(entity.JobErrorStorageFailed, err))
	}
	stored := len(rows)

	if err := job.Complete(stored); err != nil {
		return err
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).PdfJobRepository().Save(ctx, job); err != nil {
		return err
	}

	s.logger.Info("PDF", "PDF job completed", map[string]interface{}{
		"job_key": key,
		"file":    job.FileName,
		"chunks":  stored,
	})
	announceFinished(ctx, s.events, s.logger, entity.JobKindPDF, key, job.JobState)
	return nil
}

// Recover re-queues pending jobs and processing jobs idle for longer than
// the stale window.
func (s *pdfService) Recover(ctx context.Context) (int, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).PdfJobRepository()
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
		if err := s.publisher.Enqueue(ctx, entity.JobKindPDF, job.Key); err != nil {
			return i, fmt.Errorf("re-queue pdf job %s: %w", job.Key, err)
		}
	}
	if len(jobs) > 0 {
		s.logger.Info("PDF", "Unfinished pdf jobs re-queued", map[string]interface{}{
			"count": len(jobs),
		})
	}
	return len(jobs), nil
}

func (s *pdfService) fail(ctx context.Context, job *entity.PdfJob, jobErr *JobError) error {
	if _, err := s.vectorStore.DeleteByContent(ctx, entity.ContentTypePDF, job.Id); err != nil {
		s.logger.Error("PDF", "Failed to remove rows of failed job", map[string]interface{}{
			"job_key": job.Key,
			"error":   err.Error(),
		})
	}
	removeUpload(job.FilePath, s.logger)

	if err := job.Fail(jobErr.Type, jobErr.Error()); err != nil {
		return err
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).PdfJobRepository().Save(ctx, job); err != nil {
		return err
	}

	s.logger.Warn("PDF", "PDF job failed", map[string]interface{}{
		"job_key":    job.Key,
		"file":       job.FileName,
		"error_type": string(jobErr.Type),
		"error":      jobErr.Error(),
	})
	announceFinished(ctx, s.events, s.logger, entity.JobKindPDF, job.Key, job.JobState)
	return nil
}

func removeUpload(path string, log logger.ILogger) bool {
	if path == "" {
		return false
	}
	err := os.Remove(path)
	if err == nil {
		return true
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.Error("PDF", "Failed to remove uploaded file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
	return false
}

func (s *pdfService) Status(ctx context.Context, key string) (*dto.JobStatusResponse, error) {
	job, err := s.uowFactory.NewUnitOfWork(ctx).PdfJobRepository().FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return s.toStatus(job), nil
}

func (s *pdfService) List(ctx context.Context, limit, offset int) ([]*dto.JobStatusResponse, error) {
	jobs, err := s.uowFactory.NewUnitOfWork(ctx).PdfJobRepository().FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.JobStatusResponse, 0, len(jobs))
	for _, job := range jobs {
		res = append(res, s.toStatus(job))
	}
	return res, nil
}

// Delete removes the job, its rows and the uploaded file.
func (s *pdfService) Delete(ctx context.Context, key string) (*dto.DeleteJobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.PdfJobRepository().FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	deleted, err := s.vectorStore.DeleteByContent(ctx, entity.ContentTypePDF, job.Id)
	if err != nil {
		return nil, err
	}
	removed := removeUpload(job.FilePath, s.logger)
	if err := uow.PdfJobRepository().DeleteByKey(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info("PDF", "PDF job deleted", map[string]interface{}{
		"job_key":      key,
		"deleted_rows": deleted,
		"file_removed": removed,
	})
	return &dto.DeleteJobResponse{JobKey: key, DeletedRows: deleted, FileRemoved: removed}, nil
}

func (s *pdfService) toStatus(job *entity.PdfJob) *dto.JobStatusResponse {
	return jobStatus(entity.JobKindPDF, job.Key, job.FileName, job.JobState)
}
