package controller

import (
	"highlighter-be/internal/dto"
	"highlighter-be/internal/pkg/serverutils"
	"highlighter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaletteController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	CSS(ctx *fiber.Ctx) error
}

type paletteController struct {
	paletteService service.IPaletteService
}

func NewPaletteController(paletteService service.IPaletteService) IPaletteController {
	return &paletteController{
		paletteService: paletteService,
	}
}

func (c *paletteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/palette/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Show)
	h.Put("", c.Update)
	h.Get("css", c.CSS)
}

func (c *paletteController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.paletteService.Show(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get palette", res))
}

func (c *paletteController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdatePaletteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.paletteService.Update(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update palette", res))
}

// CSS serves the palette stylesheet directly so pages can link it.
func (c *paletteController) CSS(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	css, err := c.paletteService.CSS(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/css; charset=utf-8")
	return ctx.SendString(css)
}
