package service

import (
	"context"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/pkg/rag/search"
)

type ISearchService interface {
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	orchestrator *search.Orchestrator
}

func NewSearchService(orchestrator *search.Orchestrator) ISearchService {
	return &searchService{orchestrator: orchestrator}
}

func (s *searchService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	types := make([]entity.ContentType, 0, len(req.ContentTypes))
	for _, t := range req.ContentTypes {
		if parsed := entity.ParseContentType(t); parsed != "" {
			types = append(types, parsed)
		}
	}

	found, err := s.orchestrator.FindSimilar(ctx, search.Query{
		Text:         req.Query,
		Limit:        req.Limit,
		Threshold:    req.Threshold,
		ContentTypes: types,
		Intent:       search.Intent(req.Intent),
	})
	if err != nil {
		return nil, err
	}

	res := &dto.SearchResponse{
		Results:    make([]dto.SearchResultItem, 0, len(found.Results)),
		ProductIds: found.ProductIDs,
	}
	for _, r := range found.Results {
		res.Results = append(res.Results, dto.SearchResultItem{
			ContentType: r.ContentType.String(),
			ContentId:   r.ContentId,
			ChunkText:   r.ChunkText,
			SourceURL:   r.SourceURL,
			Score:       r.Score,
		})
	}
	return res, nil
}
