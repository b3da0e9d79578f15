package serverutils

import (
	"strings"

	"docchat-be/internal/constant"

	"github.com/gofiber/fiber/v2"
)

// TokenFromRequest reads the bearer token, falling back to the token query
// parameter for browser websocket handshakes.
func TokenFromRequest(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ctx.Query("token")
}

func SessionMiddleware(tokens *SessionTokens) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := TokenFromRequest(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing session token"))
		}

		sessionID, err := tokens.Parse(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid session token"))
		}

		ctx.Locals(constant.SessionLocalKey, sessionID)
		return ctx.Next()
	}
}

// SessionID returns the id stored by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(constant.SessionLocalKey).(string)
	return id
}
