package services

import (
	"context"
	"errors"
	"strings"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/itinerary"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/repositories"

	"go.uber.org/zap"
)

// RouteServiceError covers trekking route failures.
type RouteServiceError string

func (e RouteServiceError) Error() string { return string(e) }

const (
	ErrRouteNotFound       RouteServiceError = "route not found"
	ErrRouteValidation     RouteServiceError = "invalid route fields"
	ErrRouteSlugTaken      RouteServiceError = "a route with this slug already exists"
	ErrRouteHasDepartures  RouteServiceError = "route still has departures and cannot be deleted"
	ErrRouteContentInvalid RouteServiceError = "route content payload is malformed"
)

// IRouteService covers trekking route management and public reads.
type IRouteService interface {
	CreateRoute(ctx context.Context, createdByUserID uint, route models.TrekkingRoute) (*models.TrekkingRoute, error)
	GetRouteByID(ctx context.Context, id uint) (*models.TrekkingRoute, error)
	GetRouteBySlug(ctx context.Context, slug string) (*models.TrekkingRoute, error)
	ListPublishedRoutes(ctx context.Context) ([]models.TrekkingRoute, error)
	ListRoutes(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateRoute(ctx context.Context, id uint, updatedByUserID uint, route models.TrekkingRoute) error
	DeleteRoute(ctx context.Context, id uint, deletedByUserID uint) error
}

type RouteService struct {
	repo repositories.IRouteRepository
}

func NewRouteService() IRouteService {
	return &RouteService{repo: repositories.NewRouteRepository()}
}

// validateRouteContent parses every JSON content column so malformed shapes
// are rejected at the admin boundary instead of blowing up at render time.
func validateRouteContent(route models.TrekkingRoute) error {
	if _, err := itinerary.ParseDays(route.ItineraryJSON); err != nil {
		return errors.Join(ErrRouteContentInvalid, err)
	}
	if _, err := itinerary.ParseFAQ(route.FAQJSON); err != nil {
		return errors.Join(ErrRouteContentInvalid, err)
	}
	if _, err := itinerary.ParseElevation(route.ElevationProfileJSON); err != nil {
		return errors.Join(ErrRouteContentInvalid, err)
	}
	if _, err := itinerary.ParseGallery(route.GalleryJSON); err != nil {
		return errors.Join(ErrRouteContentInvalid, err)
	}
	return nil
}

func validateRouteFields(route models.TrekkingRoute) error {
	if strings.TrimSpace(route.Name) == "" || strings.TrimSpace(route.Slug) == "" {
		return ErrRouteValidation
	}
	if route.DurationDays < 1 {
		return ErrRouteValidation
	}
	return nil
}

func (s *RouteService) CreateRoute(ctx context.Context, createdByUserID uint, route models.TrekkingRoute) (*models.TrekkingRoute, error) {
	if err := validateRouteFields(route); err != nil {
		return nil, err
	}
	if err := validateRouteContent(route); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBySlug(ctx, route.Slug); err == nil {
		return nil, ErrRouteSlugTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	ctx = models.ContextWithUserID(ctx, createdByUserID)
	if err := s.repo.Create(ctx, &route); err != nil {
		configslog.Log.Error("route creation failed", zap.String("slug", route.Slug), zap.Error(err))
		return nil, err
	}
	configslog.SLog.Infof("route created: %s (ID %d)", route.Slug, route.ID)
	return &route, nil
}

func (s *RouteService) GetRouteByID(ctx context.Context, id uint) (*models.TrekkingRoute, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return route, nil
}

func (s *RouteService) GetRouteBySlug(ctx context.Context, slug string) (*models.TrekkingRoute, error) {
	route, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return route, nil
}

func (s *RouteService) ListPublishedRoutes(ctx context.Context) ([]models.TrekkingRoute, error) {
	return s.repo.FindPublished(ctx)
}

func (s *RouteService) ListRoutes(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	routes, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginate(routes, totalCount, params), nil
}

func (s *RouteService) UpdateRoute(ctx context.Context, id uint, updatedByUserID uint, route models.TrekkingRoute) error {
	if err := validateRouteFields(route); err != nil {
		return err
	}
	if err := validateRouteContent(route); err != nil {
		return err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRouteNotFound
		}
		return err
	}
	if route.Slug != existing.Slug {
		if _, err := s.repo.FindBySlug(ctx, route.Slug); err == nil {
			return ErrRouteSlugTaken
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
	}

	route.BaseModel = existing.BaseModel
	ctx = models.ContextWithUserID(ctx, updatedByUserID)
	if err := s.repo.Update(ctx, &route); err != nil {
		configslog.Log.Error("route update failed", zap.Uint("id", id), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("route updated: %s (by user %d)", route.Slug, updatedByUserID)
	return nil
}

// DeleteRoute refuses while departures exist; admins must cancel or delete
// those first.
func (s *RouteService) DeleteRoute(ctx context.Context, id uint, deletedByUserID uint) error {
	count, err := s.repo.CountDepartures(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRouteHasDepartures
	}
	if err := s.repo.Delete(ctx, id, deletedByUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRouteNotFound
		}
		return err
	}
	configslog.SLog.Infof("route deleted: ID %d (by user %d)", id, deletedByUserID)
	return nil
}

var _ IRouteService = (*RouteService)(nil)
