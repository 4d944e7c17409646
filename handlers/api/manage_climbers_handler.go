package api

import (
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
)

// ManageClimbersHandler serves the lead booker's group view. Access control
// is the documented weak check: the lead email must accompany every call.
type ManageClimbersHandler struct {
	tokenService services.IClimberTokenService
}

func NewManageClimbersHandler() *ManageClimbersHandler {
	return &ManageClimbersHandler{tokenService: services.NewClimberTokenService()}
}

// GetGroup (GET /api/manage-climbers/:bookingRef?email=) returns every
// seat's completion state plus live token codes for incomplete seats.
func (h *ManageClimbersHandler) GetGroup(c *fiber.Ctx) error {
	state, err := h.tokenService.GetGroupState(c.UserContext(), c.Params("bookingRef"), c.Query("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

type leadUpdateRequest struct {
	Email     string                         `json:"email"`
	SeatIndex int                            `json:"seatIndex"`
	Details   services.ClimberDetailsPayload `json:"details"`
}

// UpdateClimber (PUT /api/manage-climbers/:bookingRef) lets the lead fill in
// a seat directly, going through the same one-shot completion path a token
// submission takes.
func (h *ManageClimbersHandler) UpdateClimber(c *fiber.Ctx) error {
	var req leadUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	climber, err := h.tokenService.LeadUpdateClimber(
		c.UserContext(), c.Params("bookingRef"), req.Email, req.SeatIndex, req.Details)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(climber)
}

type reissueRequest struct {
	Email     string `json:"email"`
	SeatIndex int    `json:"seatIndex"`
}

// ReissueToken (POST /api/manage-climbers/:bookingRef/tokens) expires the
// seat's live link and mints a fresh one for the lead to share.
func (h *ManageClimbersHandler) ReissueToken(c *fiber.Ctx) error {
	var req reissueRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, err := h.tokenService.ReissueToken(
		c.UserContext(), c.Params("bookingRef"), req.Email, req.SeatIndex)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code":      token.Code,
		"seatIndex": token.SeatIndex,
		"expiresAt": token.ExpiresAt,
	})
}
