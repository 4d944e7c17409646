// Package renderer centralizes view rendering for the server-rendered pages
// so every handler feeds flash messages and status codes the same way.
package renderer

import (
	"kiliheights.com/pkg/flashmessages"

	"github.com/gofiber/fiber/v2"
)

const (
	FlashSuccessKeyView = "FlashSuccess"
	FlashErrorKeyView   = "FlashError"
)

// SetFlashMessages copies popped flash data into the render map under the
// view keys the layouts expect.
func SetFlashMessages(data fiber.Map, flash flashmessages.FlashData) {
	if flash.Success != "" {
		data[FlashSuccessKeyView] = flash.Success
	}
	if flash.Error != "" {
		data[FlashErrorKeyView] = flash.Error
	}
}

// Render renders view inside layout with the given data and status. Status is
// optional; the first value wins.
func Render(c *fiber.Ctx, view string, layout string, data fiber.Map, status ...int) error {
	code := fiber.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	if data == nil {
		data = fiber.Map{}
	}
	return c.Status(code).Render(view, data, layout)
}
