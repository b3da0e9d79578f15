package controller

import (
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIndexController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type indexController struct {
	indexService service.IIndexService
}

func NewIndexController(indexService service.IIndexService) IIndexController {
	return &indexController{indexService: indexService}
}

func (c *indexController) RegisterRoutes(r fiber.Router) {
	r.Get("/index/v1/status", c.GetStatus)
	r.Get("/health", c.Health)
}

func (c *indexController) GetStatus(ctx *fiber.Ctx) error {
	res, err := c.indexService.GetIndexStatus(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get index status", res))
}

func (c *indexController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "ok"}))
}
