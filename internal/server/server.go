package server

import (
	"log"

	"ai-shopassist-be/internal/bootstrap"
	"ai-shopassist-be/internal/config"
	"ai-shopassist-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	apiPrefix        = "/api/assistant/v1"
	defaultBodyLimit = 10 * 1024 * 1024 // 10MB
	multipartSlack   = 1024 * 1024
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit(cfg.Upload.MaxBytes),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(ctx *fiber.Ctx) bool {
		return ctx.Path() == "/health"
	})))

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", container.Components))
	})

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

// bodyLimit leaves room for multipart framing around the largest accepted PDF.
func bodyLimit(maxUpload int64) int {
	limit := int(maxUpload) + multipartSlack
	if limit < defaultBodyLimit {
		return defaultBodyLimit
	}
	return limit
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Assistant API listening on :%s%s", s.cfg.App.Port, apiPrefix)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Every assistant route is an operator action and sits behind the admin guard.
func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group(apiPrefix)

	c.EmbeddingController.RegisterRoutes(api, c.AdminGuard)
	c.CrawlController.RegisterRoutes(api, c.AdminGuard)
	c.PdfController.RegisterRoutes(api, c.AdminGuard)
	c.SearchController.RegisterRoutes(api, c.AdminGuard)
	c.LogController.RegisterRoutes(api, c.AdminGuard)
}
