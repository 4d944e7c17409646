package routes

import (
	public_handlers "kiliheights.com/handlers/public"

	"github.com/gofiber/fiber/v2"
)

func registerPublicRoutes(app *fiber.App) {
	pageHandler := public_handlers.NewPageHandler()
	climberForm := public_handlers.NewClimberFormHandler()

	app.Get("/", pageHandler.Home)
	app.Get("/routes", pageHandler.Routes)
	app.Get("/routes/:slug", pageHandler.RouteDetail)
	app.Get("/safaris", pageHandler.Safaris)
	app.Get("/safaris/:slug", pageHandler.SafariDetail)
	app.Get("/departures", pageHandler.Departures)
	app.Get("/blog", pageHandler.Blog)
	app.Get("/blog/:slug", pageHandler.BlogPost)

	app.Get("/climb/:token", climberForm.ShowForm)
	app.Post("/climb/:token", climberForm.SubmitForm)
}
