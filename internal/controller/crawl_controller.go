package controller

import (
	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICrawlController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Submit(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	DeleteURL(ctx *fiber.Ctx) error
	ClearProtection(ctx *fiber.Ctx) error
}

type crawlController struct {
	crawlService service.ICrawlService
}

func NewCrawlController(crawlService service.ICrawlService) ICrawlController {
	return &crawlController{
		crawlService: crawlService,
	}
}

func (c *crawlController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/crawl", guard)
	h.Post("", c.Submit)
	h.Get("", c.List)
	h.Delete("/urls", c.DeleteURL)
	h.Delete("/protection/:key", c.ClearProtection)
	h.Get("/:key", c.Status)
	h.Delete("/:key", c.Delete)
}

func (c *crawlController) Submit(ctx *fiber.Ctx) error {
	var req dto.CrawlRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.crawlService.Submit(ctx.UserContext(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Crawl job submitted", res))
}

func (c *crawlController) List(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	res, err := c.crawlService.List(ctx.UserContext(), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get crawl jobs", res))
}

func (c *crawlController) Status(ctx *fiber.Ctx) error {
	res, err := c.crawlService.Status(ctx.UserContext(), ctx.Params("key"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get crawl job", res))
}

func (c *crawlController) Delete(ctx *fiber.Ctx) error {
	res, err := c.crawlService.Delete(ctx.UserContext(), ctx.Params("key"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Crawl job deleted", res))
}

func (c *crawlController) DeleteURL(ctx *fiber.Ctx) error {
	rawURL := ctx.Query("url")
	if rawURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter url is required")
	}

	res, err := c.crawlService.DeleteURL(ctx.UserContext(), rawURL)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Page content deleted", res))
}

func (c *crawlController) ClearProtection(ctx *fiber.Ctx) error {
	res, err := c.crawlService.ClearProtection(ctx.UserContext(), ctx.Params("key"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Bot protection flag cleared", res))
}
