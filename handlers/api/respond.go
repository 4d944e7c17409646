// Package api holds the JSON handlers: the public booking and token
// endpoints plus the session-gated admin REST surface.
package api

import (
	"errors"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// apiError is the JSON error envelope. Code is machine-readable so the
// front end can branch (expired vs already_completed get different screens).
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError translates a service error into its HTTP shape. The token
// workflow's terminal states are deliberately distinct: expired offers
// "request a new link", already-completed shows a friendly done state.
// Anything unrecognized is logged and flattened to a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrTokenNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrDepartureNotFound),
		errors.Is(err, services.ErrRouteNotFound),
		errors.Is(err, services.ErrSafariNotFound),
		errors.Is(err, services.ErrPartnerNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrHeroNotFound),
		errors.Is(err, services.ErrSeatOutOfRange):
		return c.Status(fiber.StatusNotFound).JSON(apiError{Error: err.Error(), Code: "not_found"})

	case errors.Is(err, services.ErrTokenExpired):
		return c.Status(fiber.StatusGone).JSON(apiError{Error: err.Error(), Code: "expired"})

	case errors.Is(err, services.ErrDetailsAlreadyCompleted):
		return c.Status(fiber.StatusConflict).JSON(apiError{Error: err.Error(), Code: "already_completed"})

	case errors.Is(err, services.ErrManageForbidden):
		// Same generic message for unknown ref and wrong email.
		return c.Status(fiber.StatusForbidden).JSON(apiError{Error: err.Error(), Code: "forbidden"})

	case errors.Is(err, services.ErrBookingCapacity):
		return c.Status(fiber.StatusConflict).JSON(apiError{Error: err.Error(), Code: "capacity_exceeded"})

	case errors.Is(err, services.ErrRouteHasDepartures):
		return c.Status(fiber.StatusConflict).JSON(apiError{Error: err.Error(), Code: "conflict"})

	case errors.Is(err, services.ErrRouteSlugTaken),
		errors.Is(err, services.ErrSafariSlugTaken),
		errors.Is(err, services.ErrPostSlugTaken):
		return c.Status(fiber.StatusConflict).JSON(apiError{Error: err.Error(), Code: "conflict"})

	case errors.Is(err, services.ErrClimberValidation),
		errors.Is(err, services.ErrBookingValidation),
		errors.Is(err, services.ErrBookingDepartureClosed),
		errors.Is(err, services.ErrBookingBadTransition),
		errors.Is(err, services.ErrDepartureValidation),
		errors.Is(err, services.ErrDepartureRouteGone),
		errors.Is(err, services.ErrGenerateBadRange),
		errors.Is(err, services.ErrRouteValidation),
		errors.Is(err, services.ErrRouteContentInvalid),
		errors.Is(err, services.ErrSafariValidation),
		errors.Is(err, services.ErrSafariContentInvalid),
		errors.Is(err, services.ErrPartnerValidation),
		errors.Is(err, services.ErrPostValidation),
		errors.Is(err, services.ErrHeroValidation),
		errors.Is(err, services.ErrSettingValidation),
		errors.Is(err, services.ErrRotationBadConfig):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(apiError{Error: err.Error(), Code: "validation_error"})

	default:
		configslog.Log.Error("unhandled API error",
			zap.String("path", c.Path()), zap.String("method", c.Method()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(apiError{
			Error: "something went wrong, please try again", Code: "internal",
		})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: message, Code: "bad_request"})
}
