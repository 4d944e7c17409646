package api

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminDepartureHandler covers departure CRUD, bulk generation and the
// featuring rotation controls behind the admin session gate.
type AdminDepartureHandler struct {
	departureService services.IDepartureService
	rotationService  services.IRotationService
}

func NewAdminDepartureHandler() *AdminDepartureHandler {
	return &AdminDepartureHandler{
		departureService: services.NewDepartureService(),
		rotationService:  services.NewRotationService(),
	}
}

func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok && userID != 0
}

func (h *AdminDepartureHandler) ListDepartures(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		configslog.Log.Warn("ListDepartures: query parse error", zap.Error(err))
		params = queryparams.DefaultListParams("arrival_date")
	}
	params.Validate()

	result, err := h.departureService.ListDepartures(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *AdminDepartureHandler) GetDeparture(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid departure id")
	}
	departure, err := h.departureService.GetDepartureByID(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(departure)
}

func (h *AdminDepartureHandler) CreateDeparture(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}

	var in services.DepartureInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	departure, err := h.departureService.CreateDeparture(c.UserContext(), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(departure)
}

// GenerateDepartures (POST /api/admin/departures/generate) bulk-creates one
// draft departure per chosen weekday across a date range.
func (h *AdminDepartureHandler) GenerateDepartures(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}

	var req services.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	batch, err := h.departureService.GenerateDepartures(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"created":    len(batch),
		"departures": batch,
	})
}

func (h *AdminDepartureHandler) UpdateDeparture(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid departure id")
	}

	var in services.DepartureInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.departureService.UpdateDeparture(c.UserContext(), uint(id), userID, in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminDepartureHandler) DeleteDeparture(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid departure id")
	}
	if err := h.departureService.DeleteDeparture(c.UserContext(), uint(id), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetRotationConfig (GET /api/admin/rotation) returns the current featuring
// configuration, falling back to defaults when none is saved yet.
func (h *AdminDepartureHandler) GetRotationConfig(c *fiber.Ctx) error {
	cfg, err := h.rotationService.GetConfig(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

func (h *AdminDepartureHandler) UpdateRotationConfig(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}

	var cfg models.RotationConfig
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.rotationService.UpdateConfig(c.UserContext(), userID, cfg); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RunRotation (POST /api/admin/rotation/run) triggers an immediate selector
// pass and returns its summary.
func (h *AdminDepartureHandler) RunRotation(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(apiError{Error: "session required", Code: "unauthorized"})
	}

	summary, err := h.rotationService.RunRotation(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
