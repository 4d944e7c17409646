package routes

import (
	api_handlers "kiliheights.com/handlers/api"
	"kiliheights.com/middlewares"

	"github.com/gofiber/fiber/v2"
)

func registerAPIRoutes(app *fiber.App) {
	climberDetails := api_handlers.NewClimberDetailsHandler()
	manageClimbers := api_handlers.NewManageClimbersHandler()
	bookings := api_handlers.NewBookingAPIHandler()
	adminDepartures := api_handlers.NewAdminDepartureHandler()
	adminBookings := api_handlers.NewAdminBookingHandler()
	adminCatalog := api_handlers.NewAdminCatalogHandler()

	api := app.Group("/api")

	// Token and lead endpoints authenticate through the token or the lead
	// email, never a session.
	api.Get("/climber-details/:token", climberDetails.ResolveToken)
	api.Put("/climber-details/:token", climberDetails.SubmitDetails)

	api.Get("/manage-climbers/:bookingRef", manageClimbers.GetGroup)
	api.Put("/manage-climbers/:bookingRef", manageClimbers.UpdateClimber)
	api.Post("/manage-climbers/:bookingRef/tokens", manageClimbers.ReissueToken)

	api.Post("/bookings", bookings.CreateBooking)

	admin := api.Group("/admin")
	admin.Use(middlewares.AuthMiddleware)

	admin.Get("/departures", adminDepartures.ListDepartures)
	admin.Post("/departures", adminDepartures.CreateDeparture)
	admin.Post("/departures/generate", adminDepartures.GenerateDepartures)
	admin.Get("/departures/:id", adminDepartures.GetDeparture)
	admin.Put("/departures/:id", adminDepartures.UpdateDeparture)
	admin.Delete("/departures/:id", adminDepartures.DeleteDeparture)

	admin.Get("/rotation", adminDepartures.GetRotationConfig)
	admin.Put("/rotation", adminDepartures.UpdateRotationConfig)
	admin.Post("/rotation/run", adminDepartures.RunRotation)

	admin.Get("/bookings", adminBookings.ListBookings)
	admin.Get("/bookings/:id", adminBookings.GetBooking)
	admin.Put("/bookings/:id/status", adminBookings.ChangeStatus)
	admin.Post("/bookings/:id/payments", adminBookings.RecordPayment)
	admin.Post("/bookings/:id/tokens", adminBookings.ReissueToken)

	admin.Get("/routes", adminCatalog.ListRoutes)
	admin.Post("/routes", adminCatalog.CreateRoute)
	admin.Get("/routes/:id", adminCatalog.GetRoute)
	admin.Put("/routes/:id", adminCatalog.UpdateRoute)
	admin.Delete("/routes/:id", adminCatalog.DeleteRoute)

	admin.Get("/safaris", adminCatalog.ListSafaris)
	admin.Post("/safaris", adminCatalog.CreateSafari)
	admin.Get("/safaris/:id", adminCatalog.GetSafari)
	admin.Put("/safaris/:id", adminCatalog.UpdateSafari)
	admin.Delete("/safaris/:id", adminCatalog.DeleteSafari)

	admin.Get("/partners", adminCatalog.ListPartners)
	admin.Post("/partners", adminCatalog.CreatePartner)
	admin.Put("/partners/:id", adminCatalog.UpdatePartner)
	admin.Delete("/partners/:id", adminCatalog.DeletePartner)
}
