package api

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminBookingHandler covers the office-side booking lifecycle.
type AdminBookingHandler struct {
	bookingService services.IBookingService
	tokenService   services.IClimberTokenService
}

func NewAdminBookingHandler() *AdminBookingHandler {
	return &AdminBookingHandler{
		bookingService: services.NewBookingService(),
		tokenService:   services.NewClimberTokenService(),
	}
}

func (h *AdminBookingHandler) ListBookings(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		configslog.Log.Warn("ListBookings: query parse error", zap.Error(err))
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	result, err := h.bookingService.ListBookings(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetBooking accepts either the numeric ID or the public booking reference,
// so office staff can paste a "KH-" ref straight from a customer email.
func (h *AdminBookingHandler) GetBooking(c *fiber.Ctx) error {
	ctx := c.UserContext()
	param := c.Params("id")

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		booking, err := h.bookingService.GetBookingByRef(ctx, param)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(booking)
	}

	booking, err := h.bookingService.GetBookingByID(ctx, uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

type statusChangeRequest struct {
	Status models.BookingStatus `json:"status"`
}

// ChangeStatus (PUT /api/admin/bookings/:id/status) moves a booking through
// its lifecycle. Leaving the active set releases the held seats.
func (h *AdminBookingHandler) ChangeStatus(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid booking id")
	}

	var req statusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.bookingService.ChangeStatus(c.UserContext(), uint(id), userID, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type paymentRequest struct {
	Kind string `json:"kind"` // "deposit" or "balance"
}

func (h *AdminBookingHandler) RecordPayment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid booking id")
	}

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Kind != "deposit" && req.Kind != "balance" {
		return badRequest(c, "kind must be deposit or balance")
	}

	if err := h.bookingService.RecordPayment(c.UserContext(), uint(id), userID, req.Kind == "deposit"); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type adminReissueRequest struct {
	SeatIndex int `json:"seatIndex"`
}

// ReissueToken (POST /api/admin/bookings/:id/tokens) lets the office mint a
// fresh detail link for a seat, bypassing the lead-email check.
func (h *AdminBookingHandler) ReissueToken(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid booking id")
	}

	var req adminReissueRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	booking, err := h.bookingService.GetBookingByID(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}

	token, err := h.tokenService.ReissueToken(c.UserContext(), booking.BookingRef, booking.LeadEmail, req.SeatIndex)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code":      token.Code,
		"seatIndex": token.SeatIndex,
		"expiresAt": token.ExpiresAt,
		"url":       "/climb/" + token.Code,
	})
}
