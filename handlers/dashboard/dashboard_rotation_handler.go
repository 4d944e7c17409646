package dashboard

import (
	"net/http"
	"strconv"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/flashmessages"
	"kiliheights.com/pkg/renderer"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DashboardRotationHandler is the admin screen for the featuring rotation:
// view and edit the config, trigger a manual run.
type DashboardRotationHandler struct {
	rotationService services.IRotationService
}

func NewDashboardRotationHandler() *DashboardRotationHandler {
	return &DashboardRotationHandler{rotationService: services.NewRotationService()}
}

func (h *DashboardRotationHandler) ShowConfig(c *fiber.Ctx) error {
	cfg, err := h.rotationService.GetConfig(c.UserContext())
	if err != nil {
		configslog.Log.Error("rotation config load failed", zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Could not load the rotation settings.")
		return c.Redirect("/dashboard/home", fiber.StatusSeeOther)
	}

	flash, _ := flashmessages.GetFlashMessages(c)
	data := fiber.Map{
		"Title":  "Featuring Rotation",
		"Config": cfg,
		"Modes":  []models.RotationMode{models.RotationModeDefault, models.RotationModeSoonestFirst, models.RotationModeFillGaps},
	}
	renderer.SetFlashMessages(data, flash)
	return renderer.Render(c, "dashboard/rotation/config", "layouts/dashboard_layout", data, http.StatusOK)
}

// UpdateConfig applies the posted form. Checkbox fields arrive as "on" or not
// at all, numbers as strings.
func (h *DashboardRotationHandler) UpdateConfig(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	cfg, err := h.rotationService.GetConfig(c.UserContext())
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Could not load the rotation settings.")
		return c.Redirect("/dashboard/rotation", fiber.StatusSeeOther)
	}

	cfg.Enabled = formBool(c, "enabled")
	cfg.PrioritizeFullMoon = formBool(c, "prioritize_full_moon")
	cfg.Mode = models.RotationMode(c.FormValue("mode", string(models.RotationModeDefault)))
	if v, err := strconv.Atoi(c.FormValue("skip_within_days")); err == nil {
		cfg.SkipWithinDays = v
	}
	if v, err := strconv.Atoi(c.FormValue("max_featured")); err == nil {
		cfg.MaxFeatured = v
	}

	if err := h.rotationService.UpdateConfig(c.UserContext(), userID, cfg); err != nil {
		configslog.Log.Error("rotation config update failed", zap.Uint("userID", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Settings rejected: "+err.Error())
		return c.Redirect("/dashboard/rotation", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Rotation settings saved.")
	return c.Redirect("/dashboard/rotation", fiber.StatusFound)
}

// RunNow triggers an immediate selector pass from the dashboard.
func (h *DashboardRotationHandler) RunNow(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	summary, err := h.rotationService.RunRotation(c.UserContext())
	if err != nil {
		configslog.Log.Error("manual rotation run failed", zap.Uint("userID", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Rotation run failed: "+err.Error())
		return c.Redirect("/dashboard/rotation", fiber.StatusSeeOther)
	}

	configslog.SLog.Infof("manual rotation run by user %d: %d featured", userID, summary.FeaturedCount)
	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey,
		"Rotation complete: "+strconv.Itoa(summary.FeaturedCount)+" departures featured.")
	return c.Redirect("/dashboard/rotation", fiber.StatusFound)
}

func formBool(c *fiber.Ctx, field string) bool {
	v := c.FormValue(field, "false")
	return v == "true" || v == "on" || v == "1"
}
