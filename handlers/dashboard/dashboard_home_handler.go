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

// DashboardHomeHandler renders the back-office landing page with booking
// counters and the upcoming departure list.
type DashboardHomeHandler struct {
	bookingService   services.IBookingService
	departureService services.IDepartureService
}

func NewDashboardHomeHandler() *DashboardHomeHandler {
	return &DashboardHomeHandler{
		bookingService:   services.NewBookingService(),
		departureService: services.NewDepartureService(),
	}
}

func (h *DashboardHomeHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	flash, _ := flashmessages.GetFlashMessages(c)

	data := fiber.Map{
		"Title":    "Dashboard",
		"UserName": c.Locals("userName"),
	}
	renderer.SetFlashMessages(data, flash)

	counts, err := h.bookingService.CountByStatus(ctx)
	if err != nil {
		configslog.Log.Error("dashboard: booking counts failed", zap.Error(err))
	} else {
		data["BookingCounts"] = counts
	}

	params := queryparams.DefaultListParams("arrival_date")
	params.PerPage = 10
	if upcoming, err := h.departureService.ListDepartures(ctx, params); err == nil {
		data["UpcomingDepartures"] = upcoming
		if departures, ok := upcoming.Data.([]models.GroupDeparture); ok {
			data["FillRate"] = fillRate(departures)
		}
	} else {
		configslog.Log.Error("dashboard: upcoming departures failed", zap.Error(err))
	}

	return renderer.Render(c, "dashboard/home", "layouts/dashboard_layout", data, http.StatusOK)
}

// fillRate is the booked share across the listed departures, in whole percent.
func fillRate(departures []models.GroupDeparture) int {
	var booked, capacity int
	for i := range departures {
		booked += departures[i].BookedSpots
		capacity += departures[i].MaxParticipants
	}
	if capacity == 0 {
		return 0
	}
	return booked * 100 / capacity
}
