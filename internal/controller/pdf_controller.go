package controller

import (
	"io"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPdfController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type pdfController struct {
	pdfService service.IPdfService
	maxBytes   int64
}

func NewPdfController(pdfService service.IPdfService, maxBytes int64) IPdfController {
	return &pdfController{
		pdfService: pdfService,
		maxBytes:   maxBytes,
	}
}

func (c *pdfController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/pdf", guard)
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Get("/:key", c.Status)
	h.Delete("/:key", c.Delete)
}

func (c *pdfController) Upload(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Multipart field file is required")
	}
	if c.maxBytes > 0 && header.Size > c.maxBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
	}

	file, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Uploaded file cannot be read")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Uploaded file cannot be read")
	}

	res, err := c.pdfService.Upload(ctx.UserContext(), &dto.UploadPdfRequest{
		FileName: header.Filename,
		Size:     header.Size,
		Data:     data,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("PDF uploaded", res))
}

func (c *pdfController) List(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	res, err := c.pdfService.List(ctx.UserContext(), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get pdf jobs", res))
}

func (c *pdfController) Status(ctx *fiber.Ctx) error {
	res, err := c.pdfService.Status(ctx.UserContext(), ctx.Params("key"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get pdf job", res))
}

func (c *pdfController) Delete(ctx *fiber.Ctx) error {
	res, err := c.pdfService.Delete(ctx.UserContext(), ctx.Params("key"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("PDF job deleted", res))
}
