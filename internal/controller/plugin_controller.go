package controller

import (
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/pkg/serverutils"
	"ai-supportdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPluginController interface {
	RegisterRoutes(r fiber.Router)
	UpsertSecret(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
}

type pluginController struct {
	pluginService service.IPluginService
}

func NewPluginController(pluginService service.IPluginService) IPluginController {
	return &pluginController{
		pluginService: pluginService,
	}
}

func (c *pluginController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/plugin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Put(":service/secret", c.UpsertSecret)
	h.Get(":service", c.Show)
	h.Delete(":service", c.Remove)
}

func (c *pluginController) UpsertSecret(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	var req dto.UpsertPluginSecretRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.pluginService.UpsertSecret(ctx.Context(), orgId, ctx.Params("service"), req.Payload)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success store plugin secret", res))
}

func (c *pluginController) Show(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	res, err := c.pluginService.GetOne(ctx.Context(), orgId, ctx.Params("service"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show plugin credential", res))
}

func (c *pluginController) Remove(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	if err := c.pluginService.Remove(ctx.Context(), orgId, ctx.Params("service")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove plugin credential", nil))
}
