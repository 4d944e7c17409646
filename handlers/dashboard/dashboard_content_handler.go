package dashboard

import (
	"net/http"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/flashmessages"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/pkg/renderer"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DashboardContentHandler covers the editorial screens: page heroes, site
// settings and blog posts.
type DashboardContentHandler struct {
	contentService services.IContentService
}

func NewDashboardContentHandler() *DashboardContentHandler {
	return &DashboardContentHandler{contentService: services.NewContentService()}
}

func sessionUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok && userID != 0
}

// --- Page heroes ---

func (h *DashboardContentHandler) ListHeroes(c *fiber.Ctx) error {
	heroes, err := h.contentService.ListHeroes(c.UserContext(), c.Query("page_key"), false)
	flash, _ := flashmessages.GetFlashMessages(c)
	data := fiber.Map{
		"Title":  "Page Heroes",
		"Heroes": heroes,
	}
	renderer.SetFlashMessages(data, flash)
	if err != nil {
		data[renderer.FlashErrorKeyView] = "Could not load heroes."
		configslog.Log.Error("dashboard: list heroes failed", zap.Error(err))
	}
	return renderer.Render(c, "dashboard/content/heroes", "layouts/dashboard_layout", data, http.StatusOK)
}

func (h *DashboardContentHandler) SaveHero(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	var hero models.PageHero
	if err := c.BodyParser(&hero); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Invalid form data.")
		return c.Redirect("/dashboard/content/heroes", fiber.StatusSeeOther)
	}

	if _, err := h.contentService.SaveHero(c.UserContext(), userID, hero); err != nil {
		configslog.Log.Error("dashboard: save hero failed", zap.Uint("userID", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Hero could not be saved: "+err.Error())
		return c.Redirect("/dashboard/content/heroes", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Hero saved.")
	return c.Redirect("/dashboard/content/heroes", fiber.StatusFound)
}

func (h *DashboardContentHandler) DeleteHero(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Invalid hero id.")
		return c.Redirect("/dashboard/content/heroes", fiber.StatusSeeOther)
	}

	if err := h.contentService.DeleteHero(c.UserContext(), uint(id), userID); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Hero could not be deleted: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Hero deleted.")
	}
	return c.Redirect("/dashboard/content/heroes", fiber.StatusSeeOther)
}

// --- Site settings ---

func (h *DashboardContentHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.contentService.ListSettings(c.UserContext(), c.Query("group"))
	flash, _ := flashmessages.GetFlashMessages(c)
	data := fiber.Map{
		"Title":    "Site Settings",
		"Settings": settings,
		"Group":    c.Query("group"),
	}
	renderer.SetFlashMessages(data, flash)
	if err != nil {
		data[renderer.FlashErrorKeyView] = "Could not load settings."
		configslog.Log.Error("dashboard: list settings failed", zap.Error(err))
	}
	return renderer.Render(c, "dashboard/content/settings", "layouts/dashboard_layout", data, http.StatusOK)
}

// SaveSettings upserts every posted key=value pair in one request, the way
// the settings form submits its whole group.
func (h *DashboardContentHandler) SaveSettings(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	key := c.FormValue("key")
	value := c.FormValue("value")
	if key == "" {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Setting key is required.")
		return c.Redirect("/dashboard/content/settings", fiber.StatusSeeOther)
	}

	if err := h.contentService.SaveSetting(c.UserContext(), userID, key, value); err != nil {
		configslog.Log.Error("dashboard: save setting failed",
			zap.Uint("userID", userID), zap.String("key", key), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Setting could not be saved.")
		return c.Redirect("/dashboard/content/settings", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Setting saved.")
	return c.Redirect("/dashboard/content/settings", fiber.StatusFound)
}

// --- Blog posts ---

func (h *DashboardContentHandler) ListPosts(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	result, err := h.contentService.ListPosts(c.UserContext(), params)
	flash, _ := flashmessages.GetFlashMessages(c)
	data := fiber.Map{
		"Title":  "Blog Posts",
		"Result": result,
		"Params": params,
	}
	renderer.SetFlashMessages(data, flash)
	if err != nil {
		data[renderer.FlashErrorKeyView] = "Could not load posts."
		data["Result"] = &queryparams.PaginatedResult{Data: []models.BlogPost{}, Meta: queryparams.PaginationMeta{}}
		configslog.Log.Error("dashboard: list posts failed", zap.Error(err))
	}
	return renderer.Render(c, "dashboard/content/posts", "layouts/dashboard_layout", data, http.StatusOK)
}

func (h *DashboardContentHandler) ShowCreatePost(c *fiber.Ctx) error {
	flash, _ := flashmessages.GetFlashMessages(c)
	data := fiber.Map{
		"Title":    "New Blog Post",
		"FormData": flashmessages.GetFlashFormData(c),
	}
	renderer.SetFlashMessages(data, flash)
	return renderer.Render(c, "dashboard/content/post_create", "layouts/dashboard_layout", data)
}

func (h *DashboardContentHandler) CreatePost(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Invalid form data.")
		return c.Redirect("/dashboard/content/posts/create", fiber.StatusSeeOther)
	}

	if _, err := h.contentService.CreatePost(c.UserContext(), userID, post); err != nil {
		configslog.Log.Error("dashboard: create post failed", zap.Uint("userID", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Post could not be created: "+err.Error())
		_ = flashmessages.SetFlashFormData(c, post)
		return c.Redirect("/dashboard/content/posts/create", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Post created.")
	return c.Redirect("/dashboard/content/posts", fiber.StatusFound)
}

func (h *DashboardContentHandler) UpdatePost(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Invalid post id.")
		return c.Redirect("/dashboard/content/posts", fiber.StatusSeeOther)
	}

	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Invalid form data.")
		return c.Redirect("/dashboard/content/posts", fiber.StatusSeeOther)
	}

	if err := h.contentService.UpdatePost(c.UserContext(), uint(id), userID, post); err != nil {
		configslog.Log.Error("dashboard: update post failed", zap.Uint("id", uint(id)), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Post could not be updated: "+err.Error())
		return c.Redirect("/dashboard/content/posts", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Post updated.")
	return c.Redirect("/dashboard/content/posts", fiber.StatusFound)
}

func (h *DashboardContentHandler) DeletePost(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Invalid post id.")
		return c.Redirect("/dashboard/content/posts", fiber.StatusSeeOther)
	}

	if err := h.contentService.DeletePost(c.UserContext(), uint(id), userID); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Post could not be deleted: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Post deleted.")
	}
	return c.Redirect("/dashboard/content/posts", fiber.StatusSeeOther)
}
