package controller

import (
	"errors"
	"strconv"

	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/service"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/extractor"

	"github.com/gofiber/fiber/v2"
)

// toHTTPError maps service errors onto status codes. Anything unmapped is
// left for the error middleware to answer with a 500.
func toHTTPError(err error) error {
	var embedErr *embedding.Error
	switch {
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, logger.ErrLogNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCrawlURL),
		errors.Is(err, service.ErrInvalidUpload):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrContentExcluded),
		errors.Is(err, extractor.ErrNoContent):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &embedErr):
		return fiber.NewError(fiber.StatusBadGateway, "Embedding provider error: "+string(embedErr.Kind))
	default:
		return err
	}
}

// pagination reads ?page=&limit= into limit and offset.
func pagination(ctx *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
