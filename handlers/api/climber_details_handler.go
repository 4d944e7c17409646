package api

import (
	"errors"

	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
)

// ClimberDetailsHandler serves the self-service side of the token workflow.
type ClimberDetailsHandler struct {
	tokenService services.IClimberTokenService
}

func NewClimberDetailsHandler() *ClimberDetailsHandler {
	return &ClimberDetailsHandler{tokenService: services.NewClimberTokenService()}
}

// ResolveToken (GET /api/climber-details/:token) returns the pre-filled
// climber record and trip summary for a valid link. The already-completed
// case responds 409 but still carries the context so the page can show who
// submitted and when instead of a bare error.
func (h *ClimberDetailsHandler) ResolveToken(c *fiber.Ctx) error {
	resolved, err := h.tokenService.ResolveToken(c.UserContext(), c.Params("token"))
	if err != nil {
		if errors.Is(err, services.ErrDetailsAlreadyCompleted) && resolved != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   err.Error(),
				"code":    "already_completed",
				"climber": resolved.Climber.FullName,
				"trip":    resolved.Trip,
			})
		}
		return respondError(c, err)
	}
	return c.JSON(resolved)
}

// SubmitDetails (PUT /api/climber-details/:token) performs the one-shot
// submission and returns the persisted climber record.
func (h *ClimberDetailsHandler) SubmitDetails(c *fiber.Ctx) error {
	var payload services.ClimberDetailsPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	climber, err := h.tokenService.SubmitDetails(c.UserContext(), c.Params("token"), payload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(climber)
}
