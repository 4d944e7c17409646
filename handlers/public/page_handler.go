package public

import (
	"errors"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/pkg/itinerary"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/pkg/renderer"
	"kiliheights.com/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PageHandler serves the public marketing pages. Everything here is
// read-only: featured departures, route and safari catalogs, the blog.
type PageHandler struct {
	rotationService  services.IRotationService
	routeService     services.IRouteService
	safariService    services.ISafariService
	departureService services.IDepartureService
	contentService   services.IContentService
}

func NewPageHandler() *PageHandler {
	return &PageHandler{
		rotationService:  services.NewRotationService(),
		routeService:     services.NewRouteService(),
		safariService:    services.NewSafariService(),
		departureService: services.NewDepartureService(),
		contentService:   services.NewContentService(),
	}
}

// Home renders the landing page: hero, featured departures panel, the route
// and safari catalogs, partner logos.
func (h *PageHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	data := fiber.Map{"Title": "Kilimanjaro Treks & Tanzania Safaris"}

	if featured, err := h.rotationService.GetFeatured(ctx); err == nil {
		data["FeaturedDepartures"] = featured
	} else {
		configslog.Log.Error("home: featured panel failed", zap.Error(err))
	}
	if routes, err := h.routeService.ListPublishedRoutes(ctx); err == nil {
		data["Routes"] = routes
	}
	if safaris, err := h.safariService.ListPublishedSafaris(ctx); err == nil {
		data["Safaris"] = safaris
	}
	if heroes, err := h.contentService.ListHeroes(ctx, "home", true); err == nil {
		data["Heroes"] = heroes
	}
	if partners, err := h.contentService.ListActivePartners(ctx); err == nil {
		data["Partners"] = partners
	}

	return renderer.Render(c, "public/home", "layouts/public_layout", data)
}

// Routes lists every published trekking route.
func (h *PageHandler) Routes(c *fiber.Ctx) error {
	routes, err := h.routeService.ListPublishedRoutes(c.UserContext())
	if err != nil {
		configslog.Log.Error("routes page failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return renderer.Render(c, "public/routes/list", "layouts/public_layout", fiber.Map{
		"Title":  "Kilimanjaro Routes",
		"Routes": routes,
	})
}

// RouteDetail renders one route page: itinerary, FAQ, elevation profile,
// gallery and the route's upcoming departures.
func (h *PageHandler) RouteDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	route, err := h.routeService.GetRouteBySlug(ctx, c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrRouteNotFound) {
			return fiber.ErrNotFound
		}
		configslog.Log.Error("route detail failed", zap.String("slug", c.Params("slug")), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	data := fiber.Map{
		"Title": route.Name,
		"Route": route,
	}
	// Content blocks are validated on save, so parse failures here mean
	// hand-edited rows; render the page without the broken block.
	if days, err := itinerary.ParseDays(route.ItineraryJSON); err == nil {
		data["Itinerary"] = days
	}
	if faq, err := itinerary.ParseFAQ(route.FAQJSON); err == nil {
		data["FAQ"] = faq
	}
	if profile, err := itinerary.ParseElevation(route.ElevationProfileJSON); err == nil {
		data["ElevationProfile"] = profile
	}
	if gallery, err := itinerary.ParseGallery(route.GalleryJSON); err == nil {
		data["Gallery"] = gallery
	}
	if departures, err := h.departureService.ListUpcomingByRoute(ctx, route.ID); err == nil {
		data["Departures"] = departures
	}

	return renderer.Render(c, "public/routes/detail", "layouts/public_layout", data)
}

// Safaris lists every published safari package.
func (h *PageHandler) Safaris(c *fiber.Ctx) error {
	safaris, err := h.safariService.ListPublishedSafaris(c.UserContext())
	if err != nil {
		configslog.Log.Error("safaris page failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return renderer.Render(c, "public/safaris/list", "layouts/public_layout", fiber.Map{
		"Title":   "Tanzania Safaris",
		"Safaris": safaris,
	})
}

func (h *PageHandler) SafariDetail(c *fiber.Ctx) error {
	safari, err := h.safariService.GetSafariBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrSafariNotFound) {
			return fiber.ErrNotFound
		}
		configslog.Log.Error("safari detail failed", zap.String("slug", c.Params("slug")), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	data := fiber.Map{
		"Title":  safari.Name,
		"Safari": safari,
	}
	if days, err := itinerary.ParseDays(safari.ItineraryJSON); err == nil {
		data["Itinerary"] = days
	}
	if gallery, err := itinerary.ParseGallery(safari.GalleryJSON); err == nil {
		data["Gallery"] = gallery
	}

	return renderer.Render(c, "public/safaris/detail", "layouts/public_layout", data)
}

// Departures renders the full upcoming-departures calendar with the featured
// panel on top.
func (h *PageHandler) Departures(c *fiber.Ctx) error {
	ctx := c.UserContext()
	data := fiber.Map{"Title": "Group Departures"}

	if featured, err := h.rotationService.GetFeatured(ctx); err == nil {
		data["FeaturedDepartures"] = featured
	}

	params := queryparams.DefaultListParams("arrival_date")
	params.PerPage = 50
	result, err := h.departureService.ListDepartures(ctx, params)
	if err != nil {
		configslog.Log.Error("departures page failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	data["Result"] = result

	return renderer.Render(c, "public/departures", "layouts/public_layout", data)
}

// Blog lists published posts.
func (h *PageHandler) Blog(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("published_at")
	}
	params.Validate()

	result, err := h.contentService.ListPublishedPosts(c.UserContext(), params)
	if err != nil {
		configslog.Log.Error("blog page failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return renderer.Render(c, "public/blog/list", "layouts/public_layout", fiber.Map{
		"Title":  "Stories from the Mountain",
		"Result": result,
		"Params": params,
	})
}

func (h *PageHandler) BlogPost(c *fiber.Ctx) error {
	post, err := h.contentService.GetPostBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return fiber.ErrNotFound
		}
		configslog.Log.Error("blog post failed", zap.String("slug", c.Params("slug")), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return renderer.Render(c, "public/blog/detail", "layouts/public_layout", fiber.Map{
		"Title": post.Title,
		"Post":  post,
	})
}
