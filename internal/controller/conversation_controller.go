package controller

import (
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/serverutils"
	"ai-supportdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IConversationController is the operator dashboard surface.
type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Enhance(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
	messageService      service.IMessageService
}

func NewConversationController(
	conversationService service.IConversationService,
	messageService service.IMessageService,
) IConversationController {
	return &conversationController{
		conversationService: conversationService,
		messageService:      messageService,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("enhance", c.Enhance)
	h.Get(":id", c.Show)
	h.Patch(":id/status", c.UpdateStatus)
	h.Get(":id/messages", c.ListMessages)
	h.Post(":id/messages", c.SendMessage)
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	res, err := c.conversationService.GetMany(ctx.Context(), orgId, ctx.Query("status"), ctx.Query("cursor"), ctx.QueryInt("num_items"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", res))
}

func (c *conversationController) Show(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.BadRequest("Malformed conversation id")
	}

	res, err := c.conversationService.GetOne(ctx.Context(), orgId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show conversation", res))
}

func (c *conversationController) UpdateStatus(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.BadRequest("Malformed conversation id")
	}

	var req dto.UpdateConversationStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.UpdateStatus(ctx.Context(), orgId, conversationId, req.Status)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update conversation status", res))
}

func (c *conversationController) ListMessages(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.BadRequest("Malformed conversation id")
	}

	res, err := c.messageService.ListForOperator(ctx.Context(), orgId, conversationId, ctx.Query("cursor"), ctx.QueryInt("num_items"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *conversationController) SendMessage(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.BadRequest("Malformed conversation id")
	}

	var req dto.SendOperatorMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.messageService.SendOperatorMessage(ctx.Context(), orgId, conversationId, serverutils.OperatorName(ctx), req.Prompt)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *conversationController) Enhance(ctx *fiber.Ctx) error {
	var req dto.EnhanceResponseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.messageService.EnhanceResponse(ctx.Context(), req.Prompt)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success enhance response", res))
}
