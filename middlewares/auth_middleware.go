package middlewares

import (
	"kiliheights.com/configs/configssession"

	"github.com/gofiber/fiber/v2"
)

// SessionLocals loads the signed-in user out of the session into request
// locals so handlers read c.Locals("userID") instead of touching the store.
func SessionLocals() fiber.Handler {
	store := configssession.SetupSession()
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Next()
		}
		if userID, ok := sess.Get("user_id").(uint); ok && userID != 0 {
			c.Locals("userID", userID)
		}
		if name, ok := sess.Get("user_name").(string); ok {
			c.Locals("userName", name)
		}
		return c.Next()
	}
}

// AuthMiddleware gates the dashboard and admin API. Browsers get a redirect
// to login, API clients a JSON 401.
func AuthMiddleware(c *fiber.Ctx) error {
	if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
		return c.Next()
	}
	if c.Accepts("text/html", "application/json") == "application/json" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "session required",
			"code":  "unauthorized",
		})
	}
	return c.Redirect("/auth/login", fiber.StatusTemporaryRedirect)
}

// GuestMiddleware sends signed-in users away from the login pages.
func GuestMiddleware(c *fiber.Ctx) error {
	if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
		return c.Redirect("/dashboard/home", fiber.StatusFound)
	}
	return c.Next()
}
