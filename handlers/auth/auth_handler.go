package auth

import (
	"errors"
	"strings"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/configs/configssession"
	"kiliheights.com/models"
	"kiliheights.com/pkg/flashmessages"
	"kiliheights.com/pkg/renderer"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler serves the admin login. Two factors are accepted: the normal
// email and password pair, or the short office PIN used at the front desk.
type AuthHandler struct {
	authService services.IAuthService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{authService: services.NewAuthService()}
}

func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	flash, _ := flashmessages.GetFlashMessages(c)
	data := fiber.Map{"Title": "Sign In"}
	renderer.SetFlashMessages(data, flash)
	return renderer.Render(c, "auth/login", "layouts/auth_layout", data)
}

// Login handles both credential shapes: a filled pin field wins, otherwise
// email and password are tried. Failures get one generic message.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	pin := strings.TrimSpace(c.FormValue("pin"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	var (
		user *models.User
		err  error
	)
	if pin != "" {
		user, err = h.authService.AuthenticateByPIN(c.UserContext(), pin)
	} else {
		user, err = h.authService.Authenticate(c.UserContext(), email, password)
	}
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			configslog.Log.Error("login failed", zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Invalid credentials.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	sess, err := configssession.SetupSession().Get(c)
	if err != nil {
		configslog.Log.Error("session start failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	if err := sess.Regenerate(); err != nil {
		configslog.Log.Error("session regenerate failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	sess.Set("user_id", user.ID)
	sess.Set("user_name", user.Name)
	if err := sess.Save(); err != nil {
		configslog.Log.Error("session save failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}

	configslog.SLog.Infof("user %d signed in", user.ID)
	return c.Redirect("/dashboard/home", fiber.StatusFound)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := configssession.SetupSession().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/auth/login", fiber.StatusFound)
}
