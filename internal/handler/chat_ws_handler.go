package handler

import (
	"context"
	"errors"

	"docchat-be/internal/constant"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"
	internalWS "docchat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatWsHandler serves the live chat socket. Replies reach the socket through
// the chat event consumer, so only frames that never produce an event are
// written from here.
type ChatWsHandler struct {
	chatService service.IChatService
	tokens      *serverutils.SessionTokens
	hub         *internalWS.Hub
	logger      logger.ILogger
}

func NewChatWsHandler(chatService service.IChatService, tokens *serverutils.SessionTokens, hub *internalWS.Hub, log logger.ILogger) *ChatWsHandler {
	return &ChatWsHandler{
		chatService: chatService,
		tokens:      tokens,
		hub:         hub,
		logger:      log,
	}
}

func (h *ChatWsHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/ws/chat", h.ServeWs)
}

func (h *ChatWsHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := serverutils.TokenFromRequest(c)
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	sessionID, err := h.tokens.Parse(tokenStr)
	if err != nil {
		h.logger.Warn("ChatWsHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatWsHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID, h.handleInbound)
		h.logger.Info("ChatWsHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *ChatWsHandler) handleInbound(client *internalWS.Client, frame dto.WsInbound) {
	if frame.Type != constant.WsFrameAsk {
		return
	}

	req := &dto.SendChatRequest{Content: frame.Content}
	if err := serverutils.ValidateRequest(req); err != nil {
		h.hub.SendToSession(client.SessionID, dto.WsOutbound{
			Type: constant.WsFrameError,
			Data: map[string]interface{}{"message": "message must not be empty"},
		})
		return
	}

	_, err := h.chatService.SendChat(context.Background(), client.SessionID, req)
	if err == nil || errors.Is(err, service.ErrChatFailed) {
		return
	}

	h.hub.SendToSession(client.SessionID, dto.WsOutbound{
		Type: constant.WsFrameError,
		Data: map[string]interface{}{"message": err.Error()},
	})
}
