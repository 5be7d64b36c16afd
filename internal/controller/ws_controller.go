package controller

import (
	"os"

	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/service"
	internalWS "ai-supportdesk-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// WsController upgrades live-update subscriptions. Operators authenticate
// with a JWT (query token or Authorization header) and land on their
// organization topic; widget visitors pass a contact_session_id and land on
// their session topic.
type WsController struct {
	hub            *internalWS.Hub
	sessionService service.IContactSessionService
	logger         logger.ILogger
}

func NewWsController(hub *internalWS.Hub, sessionService service.IContactSessionService, logger logger.ILogger) *WsController {
	return &WsController{
		hub:            hub,
		sessionService: sessionService,
		logger:         logger,
	}
}

func (h *WsController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
}

func (h *WsController) ServeWs(c *fiber.Ctx) error {
	topic, err := h.resolveTopic(c)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("WsController", "WebSocket session started", map[string]interface{}{"topic": topic})
		internalWS.ServeWs(h.hub, conn, topic)
		h.logger.Info("WsController", "WebSocket session ended", map[string]interface{}{"topic": topic})
	})(c)
}

func (h *WsController) resolveTopic(c *fiber.Ctx) (string, error) {
	if sessionIdStr := c.Query("contact_session_id"); sessionIdStr != "" {
		sessionId, err := uuid.Parse(sessionIdStr)
		if err != nil {
			return "", c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Malformed contact session id"})
		}
		if _, err := h.sessionService.ValidateAndRefresh(c.Context(), sessionId); err != nil {
			return "", c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid contact session"})
		}
		return internalWS.SessionTopic(sessionId.String()), nil
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return "", c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token or contact_session_id"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("WsController", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return "", c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	orgId, _ := claims["org_id"].(string)
	if orgId == "" {
		return "", c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing org_id"})
	}

	return internalWS.OrgTopic(orgId), nil
}
