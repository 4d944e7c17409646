package public

import (
	"errors"
	"net/http"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/pkg/flashmessages"
	"kiliheights.com/pkg/renderer"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ClimberFormHandler serves the traveler-facing detail form reached through
// a mailed token link. No session, no login: the token is the access.
type ClimberFormHandler struct {
	tokenService services.IClimberTokenService
}

func NewClimberFormHandler() *ClimberFormHandler {
	return &ClimberFormHandler{tokenService: services.NewClimberTokenService()}
}

// ShowForm (GET /climb/:token) resolves the link and renders the pre-filled
// detail form, or one of the terminal pages (expired, already submitted).
func (h *ClimberFormHandler) ShowForm(c *fiber.Ctx) error {
	resolved, err := h.tokenService.ResolveToken(c.UserContext(), c.Params("token"))
	switch {
	case err == nil:
		flash, _ := flashmessages.GetFlashMessages(c)
		data := fiber.Map{
			"Title":    "Climber Details",
			"Token":    c.Params("token"),
			"Resolved": resolved,
			"FormData": flashmessages.GetFlashFormData(c),
		}
		renderer.SetFlashMessages(data, flash)
		return renderer.Render(c, "public/climb/form", "layouts/public_layout", data)

	case errors.Is(err, services.ErrDetailsAlreadyCompleted):
		// Friendly terminal state, not an error page: show who submitted
		// and for which trip.
		return renderer.Render(c, "public/climb/completed", "layouts/public_layout", fiber.Map{
			"Title":    "Details Already Submitted",
			"Resolved": resolved,
		}, http.StatusOK)

	case errors.Is(err, services.ErrTokenExpired):
		return renderer.Render(c, "public/climb/expired", "layouts/public_layout", fiber.Map{
			"Title": "Link Expired",
		}, http.StatusGone)

	case errors.Is(err, services.ErrTokenNotFound):
		return fiber.ErrNotFound

	default:
		configslog.Log.Error("token resolution failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
}

// SubmitForm (POST /climb/:token) performs the one-shot submission and lands
// on a thank-you page. Validation failures bounce back to the form with the
// entered values preserved.
func (h *ClimberFormHandler) SubmitForm(c *fiber.Ctx) error {
	code := c.Params("token")

	var payload services.ClimberDetailsPayload
	if err := c.BodyParser(&payload); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "The form could not be read. Please try again.")
		return c.Redirect("/climb/"+code, fiber.StatusSeeOther)
	}

	climber, err := h.tokenService.SubmitDetails(c.UserContext(), code, payload)
	switch {
	case err == nil:
		return renderer.Render(c, "public/climb/thanks", "layouts/public_layout", fiber.Map{
			"Title":   "Thank You",
			"Climber": climber,
		})

	case errors.Is(err, services.ErrClimberValidation):
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Full name and email are required.")
		_ = flashmessages.SetFlashFormData(c, payload)
		return c.Redirect("/climb/"+code, fiber.StatusSeeOther)

	case errors.Is(err, services.ErrDetailsAlreadyCompleted),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrTokenNotFound):
		// The GET view renders the right terminal page for each of these.
		return c.Redirect("/climb/"+code, fiber.StatusSeeOther)

	default:
		configslog.Log.Error("climber submission failed", zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Something went wrong. Please try again.")
		return c.Redirect("/climb/"+code, fiber.StatusSeeOther)
	}
}
