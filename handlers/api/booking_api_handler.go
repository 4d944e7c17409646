package api

import (
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
)

type BookingAPIHandler struct {
	bookingService services.IBookingService
}

func NewBookingAPIHandler() *BookingAPIHandler {
	return &BookingAPIHandler{bookingService: services.NewBookingService()}
}

type seatLink struct {
	SeatIndex int    `json:"seatIndex"`
	Code      string `json:"code"`
	URL       string `json:"url"`
}

// CreateBooking (POST /api/bookings) reserves seats on a departure and
// returns the booking reference plus one detail link per seat.
func (h *BookingAPIHandler) CreateBooking(c *fiber.Ctx) error {
	var req services.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	booking, err := h.bookingService.CreateBooking(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	links := make([]seatLink, 0, len(booking.Tokens))
	for _, token := range booking.Tokens {
		links = append(links, seatLink{
			SeatIndex: token.SeatIndex,
			Code:      token.Code,
			URL:       "/climb/" + token.Code,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"bookingRef":    booking.BookingRef,
		"status":        booking.Status,
		"totalClimbers": booking.TotalClimbers,
		"totalPrice":    booking.TotalPrice,
		"currency":      booking.Currency,
		"climberLinks":  links,
	})
}
