package controller

import (
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/serverutils"
	"ai-supportdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IWidgetController serves the embeddable chat widget. Requests authenticate
// with a contact session id instead of a JWT.
type IWidgetController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	CreateConversation(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
	ShowConversation(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
}

type widgetController struct {
	sessionService      service.IContactSessionService
	conversationService service.IConversationService
	messageService      service.IMessageService
}

func NewWidgetController(
	sessionService service.IContactSessionService,
	conversationService service.IConversationService,
	messageService service.IMessageService,
) IWidgetController {
	return &widgetController{
		sessionService:      sessionService,
		conversationService: conversationService,
		messageService:      messageService,
	}
}

func (c *widgetController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/widget/v1")
	h.Post("sessions", c.CreateSession)
	h.Post("conversations", c.CreateConversation)
	h.Get("conversations", c.ListConversations)
	h.Get("conversations/:id", c.ShowConversation)
	h.Post("messages", c.SendMessage)
	h.Get("messages", c.ListMessages)
}

func (c *widgetController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateContactSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create contact session", res))
}

func (c *widgetController) CreateConversation(ctx *fiber.Ctx) error {
	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.Create(ctx.Context(), req.ContactSessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *widgetController) ListConversations(ctx *fiber.Ctx) error {
	sessionId, err := querySessionId(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.GetManyForVisitor(ctx.Context(), sessionId, ctx.Query("cursor"), ctx.QueryInt("num_items"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", res))
}

func (c *widgetController) ShowConversation(ctx *fiber.Ctx) error {
	sessionId, err := querySessionId(ctx)
	if err != nil {
		return err
	}

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.BadRequest("Malformed conversation id")
	}

	res, err := c.conversationService.GetOneForVisitor(ctx.Context(), conversationId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show conversation", res))
}

func (c *widgetController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendVisitorMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.messageService.SendVisitorMessage(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *widgetController) ListMessages(ctx *fiber.Ctx) error {
	sessionId, err := querySessionId(ctx)
	if err != nil {
		return err
	}

	conversationId, err := uuid.Parse(ctx.Query("conversation_id"))
	if err != nil {
		return apperror.BadRequest("Malformed conversation id")
	}

	res, err := c.messageService.ListForVisitor(ctx.Context(), conversationId, sessionId, ctx.Query("cursor"), ctx.QueryInt("num_items"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func querySessionId(ctx *fiber.Ctx) (uuid.UUID, error) {
	sessionId, err := uuid.Parse(ctx.Query("contact_session_id"))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Missing or malformed contact_session_id")
	}
	return sessionId, nil
}
