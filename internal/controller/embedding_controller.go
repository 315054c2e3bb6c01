package controller

import (
	"strconv"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEmbeddingController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	ProcessBatch(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
	PurgeExcluded(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type embeddingController struct {
	ingestionService service.IIngestionService
}

func NewEmbeddingController(ingestionService service.IIngestionService) IEmbeddingController {
	return &embeddingController{
		ingestionService: ingestionService,
	}
}

func (c *embeddingController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/embeddings", guard)
	h.Post("/batch", c.ProcessBatch)
	h.Post("/purge-excluded", c.PurgeExcluded)
	h.Get("/stats", c.Stats)
	h.Post("/:type/:id", c.Reindex)
}

func (c *embeddingController) ProcessBatch(ctx *fiber.Ctx) error {
	var req dto.ProcessBatchRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.ProcessBatch(ctx.UserContext(), req.Offset)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Batch processed", res))
}

func (c *embeddingController) Reindex(ctx *fiber.Ctx) error {
	contentType := entity.ParseContentType(ctx.Params("type"))
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id < 0 || contentType == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid content reference")
	}

	res, err := c.ingestionService.Reindex(ctx.UserContext(), contentType, id)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Content reindexed", res))
}

func (c *embeddingController) PurgeExcluded(ctx *fiber.Ctx) error {
	res, err := c.ingestionService.PurgeExcluded(ctx.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Excluded content purged", res))
}

func (c *embeddingController) Stats(ctx *fiber.Ctx) error {
	res, err := c.ingestionService.Stats(ctx.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get embedding stats", res))
}
