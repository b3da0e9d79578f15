// Package web serves the single-page chat client.
package web

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed index.html
var indexHTML []byte

func RegisterRoutes(app *fiber.App) {
	app.Get("/", func(ctx *fiber.Ctx) error {
		ctx.Type("html", "utf-8")
		return ctx.Send(indexHTML)
	})
}
