package routes

import (
	"kiliheights.com/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes wires the middleware chain and every route group.
func SetupRoutes(app *fiber.App) {
	app.Use(recoverMiddleware.New())
	app.Use(logger.New())
	app.Use(middlewares.SessionLocals())

	registerAuthRoutes(app)
	registerDashboardRoutes(app)
	registerAPIRoutes(app)
	registerPublicRoutes(app)

	app.Use(notFoundHandler)
}

func notFoundHandler(c *fiber.Ctx) error {
	if c.Accepts("application/json", "text/html") == "application/json" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource not found", "code": "not_found"})
	}
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Page Not Found"}, "layouts/public_layout")
}
