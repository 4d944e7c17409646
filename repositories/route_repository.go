package repositories

import (
	"context"
	"errors"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"

	"gorm.io/gorm"
)

// IRouteRepository covers trekking route persistence.
type IRouteRepository interface {
	Create(ctx context.Context, route *models.TrekkingRoute) error
	FindByID(ctx context.Context, id uint) (*models.TrekkingRoute, error)
	FindBySlug(ctx context.Context, slug string) (*models.TrekkingRoute, error)
	FindPublished(ctx context.Context) ([]models.TrekkingRoute, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.TrekkingRoute, int64, error)
	Update(ctx context.Context, route *models.TrekkingRoute) error
	Delete(ctx context.Context, id uint, deletedByUserID uint) error
	CountDepartures(ctx context.Context, routeID uint) (int64, error)
}

type RouteRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.TrekkingRoute]
}

func NewRouteRepository() IRouteRepository {
	return NewRouteRepositoryTx(configsdatabase.GetDB())
}

func NewRouteRepositoryTx(tx *gorm.DB) IRouteRepository {
	base := NewBaseRepository[models.TrekkingRoute](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "duration_days", "price_from", "sort_order"})
	return &RouteRepository{db: tx, base: base}
}

func (r *RouteRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *RouteRepository) Create(ctx context.Context, route *models.TrekkingRoute) error {
	return r.base.Create(ctx, route)
}

func (r *RouteRepository) FindByID(ctx context.Context, id uint) (*models.TrekkingRoute, error) {
	return r.base.FindByID(ctx, id)
}

func (r *RouteRepository) FindBySlug(ctx context.Context, slug string) (*models.TrekkingRoute, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var route models.TrekkingRoute
	if err := r.getDB(ctx).Where("slug = ?", slug).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &route, nil
}

// FindPublished lists public routes in display order for the site pages.
func (r *RouteRepository) FindPublished(ctx context.Context) ([]models.TrekkingRoute, error) {
	var routes []models.TrekkingRoute
	err := r.getDB(ctx).
		Where("is_published = ?", true).
		Order("sort_order asc, name asc").
		Find(&routes).Error
	return routes, err
}

func (r *RouteRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.TrekkingRoute, int64, error) {
	scopes := []func(*gorm.DB) *gorm.DB{}
	if params.Name != "" {
		name := "%" + params.Name + "%"
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("name ILIKE ?", name)
		})
	}
	if params.Status != "" {
		published := params.Status == "published"
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("is_published = ?", published)
		})
	}
	return r.base.FindAllPaginated(ctx, params, scopes...)
}

func (r *RouteRepository) Update(ctx context.Context, route *models.TrekkingRoute) error {
	if route == nil || route.ID == 0 {
		return errors.New("cannot update invalid route")
	}
	return r.base.Update(ctx, route)
}

func (r *RouteRepository) Delete(ctx context.Context, id uint, deletedByUserID uint) error {
	return r.base.Delete(ctx, id, deletedByUserID)
}

// CountDepartures counts live departures for the route; the service blocks
// deletion while any exist.
func (r *RouteRepository) CountDepartures(ctx context.Context, routeID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.GroupDeparture{}).
		Where("route_id = ?", routeID).Count(&count).Error
	return count, err
}

var _ IRouteRepository = (*RouteRepository)(nil)
