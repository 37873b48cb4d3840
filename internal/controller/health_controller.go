package controller

import (
	"highlighter-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type HealthStatus struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Sessions int    `json:"sessions"`
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	database bool
	sessions func() int
}

func NewHealthController(database bool, sessions func() int) IHealthController {
	return &healthController{
		database: database,
		sessions: sessions,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", HealthStatus{
		Status:   "ok",
		Database: c.database,
		Sessions: c.sessions(),
	}))
}
