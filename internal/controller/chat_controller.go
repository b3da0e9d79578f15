package controller

import (
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetPage(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetTranscript(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	tokens      *serverutils.SessionTokens
}

func NewChatController(chatService service.IChatService, tokens *serverutils.SessionTokens) IChatController {
	return &chatController{
		chatService: chatService,
		tokens:      tokens,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("page", c.GetPage)
	h.Post("session", c.CreateSession)

	session := serverutils.SessionMiddleware(c.tokens)
	h.Get("session/messages", session, c.GetTranscript)
	h.Post("message", session, c.SendChat)
	h.Delete("session", session, c.DeleteSession)
}

func (c *chatController) GetPage(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get page", c.chatService.GetPage(ctx.UserContext())))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chatService.CreateSession(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) GetTranscript(ctx *fiber.Ctx) error {
	res, err := c.chatService.GetTranscript(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get transcript", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.chatService.DeleteSession(ctx.UserContext(), serverutils.SessionID(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}
