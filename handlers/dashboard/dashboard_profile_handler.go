package dashboard

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

// DashboardProfileHandler lets a signed-in user manage their own credentials.
type DashboardProfileHandler struct {
	authService services.IAuthService
}

func NewDashboardProfileHandler() *DashboardProfileHandler {
	return &DashboardProfileHandler{authService: services.NewAuthService()}
}

func (h *DashboardProfileHandler) Show(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	user, err := h.authService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		configslog.Log.Error("dashboard: load profile failed", zap.Uint("userID", userID), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	flash, _ := flashmessages.GetFlashMessages(c)
	data := fiber.Map{
		"Title":      "My Profile",
		"User":       user,
		"PINEnabled": user.PINHash != "",
	}
	renderer.SetFlashMessages(data, flash)
	return renderer.Render(c, "dashboard/profile", "layouts/dashboard_layout", data, http.StatusOK)
}

// UpdatePassword requires the current password before setting the new one.
func (h *DashboardProfileHandler) UpdatePassword(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}
	ctx := c.UserContext()

	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		configslog.Log.Error("dashboard: load profile failed", zap.Uint("userID", userID), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	if _, err := h.authService.Authenticate(ctx, user.Email, c.FormValue("current_password")); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Current password is incorrect.")
		return c.Redirect("/dashboard/profile", fiber.StatusSeeOther)
	}

	newPassword := c.FormValue("new_password")
	if newPassword != c.FormValue("confirm_password") {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Passwords do not match.")
		return c.Redirect("/dashboard/profile", fiber.StatusSeeOther)
	}

	if err := h.authService.SetPassword(ctx, userID, newPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Password must be at least 8 characters.")
		} else {
			configslog.Log.Error("dashboard: set password failed", zap.Uint("userID", userID), zap.Error(err))
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Could not update the password.")
		}
		return c.Redirect("/dashboard/profile", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Password updated.")
	return c.Redirect("/dashboard/profile", fiber.StatusSeeOther)
}

// UpdatePIN sets the short code used for the office login factor.
func (h *DashboardProfileHandler) UpdatePIN(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	if err := h.authService.SetPIN(c.UserContext(), userID, c.FormValue("pin")); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "PIN must be 4 to 8 characters.")
		} else {
			configslog.Log.Error("dashboard: set PIN failed", zap.Uint("userID", userID), zap.Error(err))
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Could not update the PIN.")
		}
		return c.Redirect("/dashboard/profile", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Office PIN updated.")
	return c.Redirect("/dashboard/profile", fiber.StatusSeeOther)
}
