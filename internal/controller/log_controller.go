package controller

import (
	"strconv"

	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILogController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type logController struct {
	logService service.ILogService
}

func NewLogController(logService service.ILogService) ILogController {
	return &logController{logService: logService}
}

func (c *logController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/logs", guard)
	h.Get("", c.GetLogs)
	h.Get("/:id", c.GetLogDetail)
}

func (c *logController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	logs, err := c.logService.List(ctx.UserContext(), ctx.Query("level"), ctx.Query("module"), page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get logs", logs))
}

func (c *logController) GetLogDetail(ctx *fiber.Ctx) error {
	entry, err := c.logService.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get log detail", entry))
}
