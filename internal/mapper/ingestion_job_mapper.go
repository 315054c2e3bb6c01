package mapper

import (
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/model"

	"gorm.io/datatypes"
)

type IngestionJobMapper struct{}

func NewIngestionJobMapper() *IngestionJobMapper {
	return &IngestionJobMapper{}
}

func (m *IngestionJobMapper) CrawlToEntity(j *model.CrawlJob) *entity.CrawlJob {
	if j == nil {
		return nil
	}
	return &entity.CrawlJob{
		Id:            j.Id,
		Key:           j.Key,
		URL:           j.URL,
		NormalizedURL: j.NormalizedURL,
		Options:       j.Options.Data(),
		PagesCrawled:  j.PagesCrawled,
		JobState: entity.JobState{
			Status:         entity.JobStatus(j.Status),
			Attempts:       j.Attempts,
			ErrorType:      entity.JobErrorType(j.ErrorType),
			ErrorMessage:   j.ErrorMessage,
			EmbeddingCount: j.EmbeddingCount,
			CreatedAt:      j.CreatedAt,
			UpdatedAt:      j.UpdatedAt,
		},
	}
}

func (m *IngestionJobMapper) CrawlToModel(j *entity.CrawlJob) *model.CrawlJob {
	if j == nil {
		return nil
	}
	return &model.CrawlJob{
		Id:             j.Id,
		Key:            j.Key,
		URL:            j.URL,
		NormalizedURL:  j.NormalizedURL,
		Options:        datatypes.NewJSONType(j.Options),
		Status:         string(j.Status),
		Attempts:       j.Attempts,
		ErrorType:      string(j.ErrorType),
		ErrorMessage:   j.ErrorMessage,
		EmbeddingCount: j.EmbeddingCount,
		PagesCrawled:   j.PagesCrawled,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func (m *IngestionJobMapper) PdfToEntity(j *model.PdfJob) *entity.PdfJob {
	if j == nil {
		return nil
	}
	return &entity.PdfJob{
		Id:       j.Id,
		Key:      j.Key,
		FileName: j.FileName,
		FilePath: j.FilePath,
		FileSize: j.FileSize,
		JobState: entity.JobState{
			Status:         entity.JobStatus(j.Status),
			Attempts:       j.Attempts,
			ErrorType:      entity.JobErrorType(j.ErrorType),
			ErrorMessage:   j.ErrorMessage,
			EmbeddingCount: j.EmbeddingCount,
			CreatedAt:      j.CreatedAt,
			UpdatedAt:      j.UpdatedAt,
		},
	}
}

func (m *IngestionJobMapper) PdfToModel(j *entity.PdfJob) *model.PdfJob {
	if j == nil {
		return nil
	}
	return &model.PdfJob{
		Id:             j.Id,
		Key:            j.Key,
		FileName:       j.FileName,
		FilePath:       j.FilePath,
		FileSize:       j.FileSize,
		Status:         string(j.Status),
		Attempts:       j.Attempts,
		ErrorType:      string(j.ErrorType),
		ErrorMessage:   j.ErrorMessage,
		EmbeddingCount: j.EmbeddingCount,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}
