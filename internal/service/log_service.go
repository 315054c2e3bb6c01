package service

import (
	"context"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/pkg/logger"
)

// ILogService reads back the structured application log for operators.
type ILogService interface {
	List(ctx context.Context, level, module string, page, limit int) ([]*dto.LogListResponse, error)
	Show(ctx context.Context, id string) (*dto.LogDetailResponse, error)
}

type logService struct {
	logger logger.ILogger
}

func NewLogService(logger logger.ILogger) ILogService {
	return &logService{logger: logger}
}

func (s *logService) List(_ context.Context, level, module string, page, limit int) ([]*dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	entries, err := s.logger.GetLogs(level, module, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, &dto.LogListResponse{
			Id:        e.Id,
			Level:     e.Level,
			Module:    e.Module,
			Message:   e.Message,
			JobKey:    e.JobKey,
			CreatedAt: e.Timestamp,
		})
	}
	return res, nil
}

func (s *logService) Show(_ context.Context, id string) (*dto.LogDetailResponse, error) {
	entry, err := s.logger.GetLogById(id)
	if err != nil {
		return nil, err
	}
	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        entry.Id,
			Level:     entry.Level,
			Module:    entry.Module,
			Message:   entry.Message,
			JobKey:    entry.JobKey,
			CreatedAt: entry.Timestamp,
		},
		Details: entry.Details,
	}, nil
}
