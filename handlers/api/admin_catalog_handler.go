package api

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminCatalogHandler covers the sellable catalog: trekking routes, safari
// packages and the partner logos shown on public pages.
type AdminCatalogHandler struct {
	routeService   services.IRouteService
	safariService  services.ISafariService
	contentService services.IContentService
}

func NewAdminCatalogHandler() *AdminCatalogHandler {
	return &AdminCatalogHandler{
		routeService:   services.NewRouteService(),
		safariService:  services.NewSafariService(),
		contentService: services.NewContentService(),
	}
}

func (h *AdminCatalogHandler) listParams(c *fiber.Ctx, defaultSort string) queryparams.ListParams {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		configslog.Log.Warn("catalog list: query parse error", zap.Error(err))
		params = queryparams.DefaultListParams(defaultSort)
	}
	params.Validate()
	return params
}

// --- Trekking routes ---

func (h *AdminCatalogHandler) ListRoutes(c *fiber.Ctx) error {
	result, err := h.routeService.ListRoutes(c.UserContext(), h.listParams(c, "sort_order"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *AdminCatalogHandler) GetRoute(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid route id")
	}
	route, err := h.routeService.GetRouteByID(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(route)
}

func (h *AdminCatalogHandler) CreateRoute(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	var route models.TrekkingRoute
	if err := c.BodyParser(&route); err != nil {
		return badRequest(c, "invalid request body")
	}
	created, err := h.routeService.CreateRoute(c.UserContext(), userID, route)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *AdminCatalogHandler) UpdateRoute(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid route id")
	}
	var route models.TrekkingRoute
	if err := c.BodyParser(&route); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.routeService.UpdateRoute(c.UserContext(), uint(id), userID, route); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminCatalogHandler) DeleteRoute(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid route id")
	}
	if err := h.routeService.DeleteRoute(c.UserContext(), uint(id), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Safari packages ---

func (h *AdminCatalogHandler) ListSafaris(c *fiber.Ctx) error {
	result, err := h.safariService.ListSafaris(c.UserContext(), h.listParams(c, "sort_order"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *AdminCatalogHandler) GetSafari(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid safari id")
	}
	safari, err := h.safariService.GetSafariByID(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(safari)
}

func (h *AdminCatalogHandler) CreateSafari(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	var safari models.SafariPackage
	if err := c.BodyParser(&safari); err != nil {
		return badRequest(c, "invalid request body")
	}
	created, err := h.safariService.CreateSafari(c.UserContext(), userID, safari)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *AdminCatalogHandler) UpdateSafari(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid safari id")
	}
	var safari models.SafariPackage
	if err := c.BodyParser(&safari); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.safariService.UpdateSafari(c.UserContext(), uint(id), userID, safari); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminCatalogHandler) DeleteSafari(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid safari id")
	}
	if err := h.safariService.DeleteSafari(c.UserContext(), uint(id), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Partners ---

func (h *AdminCatalogHandler) ListPartners(c *fiber.Ctx) error {
	result, err := h.contentService.ListPartners(c.UserContext(), h.listParams(c, "sort_order"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *AdminCatalogHandler) CreatePartner(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	var partner models.Partner
	if err := c.BodyParser(&partner); err != nil {
		return badRequest(c, "invalid request body")
	}
	created, err := h.contentService.CreatePartner(c.UserContext(), userID, partner)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *AdminCatalogHandler) UpdatePartner(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid partner id")
	}
	var partner models.Partner
	if err := c.BodyParser(&partner); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.contentService.UpdatePartner(c.UserContext(), uint(id), userID, partner); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminCatalogHandler) DeletePartner(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid partner id")
	}
	if err := h.contentService.DeletePartner(c.UserContext(), uint(id), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
