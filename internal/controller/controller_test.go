package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/service"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/extractor"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"job not found", service.ErrJobNotFound, fiber.StatusNotFound},
		{"log not found", logger.ErrLogNotFound, fiber.StatusNotFound},
		{"bad url", fmt.Errorf("%w: no host", service.ErrInvalidCrawlURL), fiber.StatusBadRequest},
		{"too large", service.ErrUploadTooLarge, fiber.StatusRequestEntityTooLarge},
		{"no content", extractor.ErrNoContent, fiber.StatusUnprocessableEntity},
		{"embedding", &embedding.Error{Kind: embedding.KindTransport, Message: "refused"}, fiber.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fiberErr *fiber.Error
			require.True(t, errors.As(toHTTPError(tt.err), &fiberErr))
			assert.Equal(t, tt.want, fiberErr.Code)
		})
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, toHTTPError(plain))
}

type stubCrawlService struct {
	service.ICrawlService
	submitted []*dto.CrawlRequest
}

func (s *stubCrawlService) Submit(_ context.Context, req *dto.CrawlRequest) (*dto.JobStatusResponse, error) {
	s.submitted = append(s.submitted, req)
	return &dto.JobStatusResponse{JobKey: "abc", Status: "pending"}, nil
}

func (s *stubCrawlService) Status(_ context.Context, key string) (*dto.JobStatusResponse, error) {
	if key != "abc" {
		return nil, service.ErrJobNotFound
	}
	return &dto.JobStatusResponse{JobKey: key, Status: "completed"}, nil
}

func newCrawlApp(svc service.ICrawlService, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	NewCrawlController(svc).RegisterRoutes(app.Group("/api/assistant/v1"), guard)
	return app
}

func allow(ctx *fiber.Ctx) error { return ctx.Next() }

func TestCrawlController(t *testing.T) {
	svc := &stubCrawlService{}
	app := newCrawlApp(svc, allow)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"submit", "POST", "/api/assistant/v1/crawl", `{"url":"https://shop.example","max_pages":5}`, fiber.StatusAccepted},
		{"submit invalid", "POST", "/api/assistant/v1/crawl", `{"url":"not a url"}`, fiber.StatusBadRequest},
		{"status", "GET", "/api/assistant/v1/crawl/abc", "", fiber.StatusOK},
		{"status unknown", "GET", "/api/assistant/v1/crawl/zzz", "", fiber.StatusNotFound},
		{"delete url without param", "DELETE", "/api/assistant/v1/crawl/urls", "", fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	require.Len(t, svc.submitted, 1)
	assert.Equal(t, 5, svc.submitted[0].MaxPages)
}

func TestCrawlController_Guarded(t *testing.T) {
	svc := &stubCrawlService{}
	app := newCrawlApp(svc, serverutils.AdminMiddleware("secret"))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/assistant/v1/crawl/abc", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
