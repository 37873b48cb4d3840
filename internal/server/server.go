package server

import (
	"context"
	"log"
	"time"

	"highlighter-be/internal/bootstrap"
	"highlighter-be/internal/config"
	"highlighter-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownGrace = 10 * time.Second

type Server struct {
	app  *fiber.App
	port string
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		// Documents are posted whole.
		BodyLimit:             10 * 1024 * 1024,
		DisableStartupMessage: cfg.App.Environment == "production",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))
	app.Use(otelfiber.Middleware())
	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Route not found"))
	})

	return &Server{app: app, port: cfg.App.Port}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		stopped <- s.app.ShutdownWithTimeout(shutdownGrace)
	}()

	log.Printf("✅ Server is running on http://localhost:%s", s.port)
	if err := s.app.Listen(":" + s.port); err != nil {
		return err
	}
	return <-stopped
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.HealthController.RegisterRoutes(app)

	api := app.Group("/api")
	c.HighlightController.RegisterRoutes(api)
	c.DocumentController.RegisterRoutes(api)
	c.PaletteController.RegisterRoutes(api)
	c.NotificationHandler.RegisterRoutes(api)
}
