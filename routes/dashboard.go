package routes

import (
	dashboard_handlers "kiliheights.com/handlers/dashboard"
	"kiliheights.com/middlewares"

	"github.com/gofiber/fiber/v2"
)

func registerDashboardRoutes(app *fiber.App) {
	homeHandler := dashboard_handlers.NewDashboardHomeHandler()
	rotationHandler := dashboard_handlers.NewDashboardRotationHandler()
	contentHandler := dashboard_handlers.NewDashboardContentHandler()
	profileHandler := dashboard_handlers.NewDashboardProfileHandler()

	group := app.Group("/dashboard")
	group.Use(middlewares.AuthMiddleware)

	group.Get("/home", homeHandler.Home)

	group.Get("/profile", profileHandler.Show)
	group.Post("/profile/password", profileHandler.UpdatePassword)
	group.Post("/profile/pin", profileHandler.UpdatePIN)

	group.Get("/rotation", rotationHandler.ShowConfig)
	group.Post("/rotation", rotationHandler.UpdateConfig)
	group.Post("/rotation/run", rotationHandler.RunNow)

	group.Get("/content/heroes", contentHandler.ListHeroes)
	group.Post("/content/heroes", contentHandler.SaveHero)
	group.Post("/content/heroes/delete/:id", contentHandler.DeleteHero)

	group.Get("/content/settings", contentHandler.ListSettings)
	group.Post("/content/settings", contentHandler.SaveSettings)

	group.Get("/content/posts", contentHandler.ListPosts)
	group.Get("/content/posts/create", contentHandler.ShowCreatePost)
	group.Post("/content/posts/create", contentHandler.CreatePost)
	group.Post("/content/posts/update/:id", contentHandler.UpdatePost)
	group.Post("/content/posts/delete/:id", contentHandler.DeletePost)
}
