package controller

import (
	"highlighter-be/internal/dto"
	"highlighter-be/internal/pkg/serverutils"
	"highlighter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHighlightController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
}

type highlightController struct {
	highlightService service.IHighlightService
	documentService  service.IDocumentService
}

func NewHighlightController(highlightService service.IHighlightService, documentService service.IDocumentService) IHighlightController {
	return &highlightController{
		highlightService: highlightService,
		documentService:  documentService,
	}
}

func (c *highlightController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/highlight/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Index)
	h.Post("", c.Create)
	h.Post("restore", c.Restore)
	h.Patch(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func requireURL(ctx *fiber.Ctx) (string, error) {
	url := ctx.Query("url")
	if url == "" {
		return "", serverutils.BadRequest("Query parameter 'url' is required", nil)
	}
	return url, nil
}

func (c *highlightController) Index(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	url, err := requireURL(ctx)
	if err != nil {
		return err
	}

	res, err := c.highlightService.Index(ctx.UserContext(), userId, url)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get highlights", res))
}

func (c *highlightController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.PutAnchorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.highlightService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create highlight", res))
}

func (c *highlightController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	url, err := requireURL(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateHighlightRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.highlightService.Update(ctx.UserContext(), userId, url, ctx.Params("id"), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update highlight", nil))
}

func (c *highlightController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	url, err := requireURL(ctx)
	if err != nil {
		return err
	}

	if err := c.highlightService.Delete(ctx.UserContext(), userId, url, ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete highlight", nil))
}

func (c *highlightController) Restore(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.RestoreRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.RestoreOnce(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restore highlights", res))
}
