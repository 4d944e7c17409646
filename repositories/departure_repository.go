package repositories

import (
	"context"
	"errors"
	"time"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"

	"gorm.io/gorm"
)

// IDepartureRepository covers group departure persistence, including the
// rotation selector's candidate query and featured-flag writes.
type IDepartureRepository interface {
	Create(ctx context.Context, departure *models.GroupDeparture) error
	CreateBatch(ctx context.Context, departures []models.GroupDeparture) error
	FindByID(ctx context.Context, id uint) (*models.GroupDeparture, error)
	FindUpcomingCandidates(ctx context.Context, now time.Time) ([]models.GroupDeparture, error)
	FindFeatured(ctx context.Context) ([]models.GroupDeparture, error)
	FindUpcomingByRoute(ctx context.Context, routeID uint, now time.Time) ([]models.GroupDeparture, error)
	FindPastUnclosed(ctx context.Context, now time.Time) ([]models.GroupDeparture, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.GroupDeparture, int64, error)
	Update(ctx context.Context, departure *models.GroupDeparture) error
	UpdateStatus(ctx context.Context, id uint, status models.DepartureStatus) error
	SetFeatured(ctx context.Context, featuredIDs []uint) error
	Delete(ctx context.Context, id uint, deletedByUserID uint) error
}

type DepartureRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.GroupDeparture]
}

func NewDepartureRepository() IDepartureRepository {
	return NewDepartureRepositoryTx(configsdatabase.GetDB())
}

func NewDepartureRepositoryTx(tx *gorm.DB) IDepartureRepository {
	base := NewBaseRepository[models.GroupDeparture](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "arrival_date", "start_date", "price", "status", "booked_spots"})
	return &DepartureRepository{db: tx, base: base}
}

func (r *DepartureRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *DepartureRepository) Create(ctx context.Context, departure *models.GroupDeparture) error {
	return r.base.Create(ctx, departure)
}

// CreateBatch inserts a bulk-generated set in one statement.
func (r *DepartureRepository) CreateBatch(ctx context.Context, departures []models.GroupDeparture) error {
	if len(departures) == 0 {
		return nil
	}
	return r.getDB(ctx).Create(&departures).Error
}

func (r *DepartureRepository) FindByID(ctx context.Context, id uint) (*models.GroupDeparture, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var departure models.GroupDeparture
	err := r.getDB(ctx).Preload("Route").First(&departure, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &departure, nil
}

// FindUpcomingCandidates returns the rotation selector's input: every
// non-cancelled, non-completed departure whose end date has not passed,
// in stored (arrival, id) order so manual pins keep their stored order.
func (r *DepartureRepository) FindUpcomingCandidates(ctx context.Context, now time.Time) ([]models.GroupDeparture, error) {
	var departures []models.GroupDeparture
	err := r.getDB(ctx).Preload("Route").
		Where("status NOT IN ?", []models.DepartureStatus{
			models.DepartureStatusCancelled, models.DepartureStatusCompleted,
		}).
		Where("end_date >= ?", now).
		Order("arrival_date asc, id asc").
		Find(&departures).Error
	return departures, err
}

// FindFeatured returns the currently flagged panel in arrival order.
func (r *DepartureRepository) FindFeatured(ctx context.Context) ([]models.GroupDeparture, error) {
	var departures []models.GroupDeparture
	err := r.getDB(ctx).Preload("Route").
		Where("is_featured = ?", true).
		Order("arrival_date asc, id asc").
		Find(&departures).Error
	return departures, err
}

// FindUpcomingByRoute lists bookable future departures for one route page.
func (r *DepartureRepository) FindUpcomingByRoute(ctx context.Context, routeID uint, now time.Time) ([]models.GroupDeparture, error) {
	var departures []models.GroupDeparture
	err := r.getDB(ctx).
		Where("route_id = ?", routeID).
		Where("status IN ?", models.BookableStatuses).
		Where("arrival_date >= ?", now).
		Order("arrival_date asc").
		Find(&departures).Error
	return departures, err
}

// FindPastUnclosed returns departures whose end date has passed but whose
// status was never moved to a terminal one; rotation runs close them out.
func (r *DepartureRepository) FindPastUnclosed(ctx context.Context, now time.Time) ([]models.GroupDeparture, error) {
	var departures []models.GroupDeparture
	err := r.getDB(ctx).
		Where("end_date < ?", now).
		Where("status NOT IN ?", []models.DepartureStatus{
			models.DepartureStatusCancelled, models.DepartureStatusCompleted,
		}).
		Find(&departures).Error
	return departures, err
}

func (r *DepartureRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.GroupDeparture, int64, error) {
	scopes := []func(*gorm.DB) *gorm.DB{
		func(q *gorm.DB) *gorm.DB { return q.Preload("Route") },
	}
	if params.Status != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", params.Status)
		})
	}
	return r.base.FindAllPaginated(ctx, params, scopes...)
}

func (r *DepartureRepository) Update(ctx context.Context, departure *models.GroupDeparture) error {
	if departure == nil || departure.ID == 0 {
		return errors.New("cannot update invalid departure")
	}
	return r.base.Update(ctx, departure)
}

func (r *DepartureRepository) UpdateStatus(ctx context.Context, id uint, status models.DepartureStatus) error {
	res := r.getDB(ctx).Model(&models.GroupDeparture{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFeatured rewrites the is_featured flags to exactly featuredIDs, in one
// transaction so the public panel never observes a half-applied run.
func (r *DepartureRepository) SetFeatured(ctx context.Context, featuredIDs []uint) error {
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GroupDeparture{}).
			Where("is_featured = ?", true).
			Update("is_featured", false).Error; err != nil {
			return err
		}
		if len(featuredIDs) == 0 {
			return nil
		}
		return tx.Model(&models.GroupDeparture{}).
			Where("id IN ?", featuredIDs).
			Update("is_featured", true).Error
	})
}

func (r *DepartureRepository) Delete(ctx context.Context, id uint, deletedByUserID uint) error {
	return r.base.Delete(ctx, id, deletedByUserID)
}

var _ IDepartureRepository = (*DepartureRepository)(nil)
