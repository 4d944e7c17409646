package repositories

import (
	"context"
	"errors"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"

	"gorm.io/gorm"
)

// ISafariRepository covers safari package persistence.
type ISafariRepository interface {
	Create(ctx context.Context, safari *models.SafariPackage) error
	FindByID(ctx context.Context, id uint) (*models.SafariPackage, error)
	FindBySlug(ctx context.Context, slug string) (*models.SafariPackage, error)
	FindPublished(ctx context.Context) ([]models.SafariPackage, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.SafariPackage, int64, error)
	Update(ctx context.Context, safari *models.SafariPackage) error
	Delete(ctx context.Context, id uint, deletedByUserID uint) error
}

type SafariRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.SafariPackage]
}

func NewSafariRepository() ISafariRepository {
	return NewSafariRepositoryTx(configsdatabase.GetDB())
}

func NewSafariRepositoryTx(tx *gorm.DB) ISafariRepository {
	base := NewBaseRepository[models.SafariPackage](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "duration_days", "price_from", "sort_order"})
	return &SafariRepository{db: tx, base: base}
}

func (r *SafariRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *SafariRepository) Create(ctx context.Context, safari *models.SafariPackage) error {
	return r.base.Create(ctx, safari)
}

func (r *SafariRepository) FindByID(ctx context.Context, id uint) (*models.SafariPackage, error) {
	return r.base.FindByID(ctx, id)
}

func (r *SafariRepository) FindBySlug(ctx context.Context, slug string) (*models.SafariPackage, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var safari models.SafariPackage
	if err := r.getDB(ctx).Where("slug = ?", slug).First(&safari).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &safari, nil
}

func (r *SafariRepository) FindPublished(ctx context.Context) ([]models.SafariPackage, error) {
	var safaris []models.SafariPackage
	err := r.getDB(ctx).
		Where("is_published = ?", true).
		Order("sort_order asc, name asc").
		Find(&safaris).Error
	return safaris, err
}

func (r *SafariRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.SafariPackage, int64, error) {
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

func (r *SafariRepository) Update(ctx context.Context, safari *models.SafariPackage) error {
	if safari == nil || safari.ID == 0 {
		return errors.New("cannot update invalid safari package")
	}
	return r.base.Update(ctx, safari)
}

func (r *SafariRepository) Delete(ctx context.Context, id uint, deletedByUserID uint) error {
	return r.base.Delete(ctx, id, deletedByUserID)
}

var _ ISafariRepository = (*SafariRepository)(nil)
