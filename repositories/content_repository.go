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

// IPartnerRepository covers partner logo-wall entries.
type IPartnerRepository interface {
	IBaseRepository[models.Partner]
	FindActive(ctx context.Context) ([]models.Partner, error)
}

type PartnerRepository struct {
	*BaseRepository[models.Partner]
	db *gorm.DB
}

func NewPartnerRepository() IPartnerRepository {
	return NewPartnerRepositoryTx(configsdatabase.GetDB())
}

func NewPartnerRepositoryTx(tx *gorm.DB) IPartnerRepository {
	base := NewBaseRepository[models.Partner](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "sort_order"})
	return &PartnerRepository{BaseRepository: base, db: tx}
}

func (r *PartnerRepository) FindActive(ctx context.Context) ([]models.Partner, error) {
	var partners []models.Partner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order asc, name asc").
		Find(&partners).Error
	return partners, err
}

var _ IPartnerRepository = (*PartnerRepository)(nil)

// IBlogRepository covers blog posts.
type IBlogRepository interface {
	IBaseRepository[models.BlogPost]
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	FindPublished(ctx context.Context, now time.Time, params queryparams.ListParams) ([]models.BlogPost, int64, error)
}

type BlogRepository struct {
	*BaseRepository[models.BlogPost]
	db *gorm.DB
}

func NewBlogRepository() IBlogRepository {
	return NewBlogRepositoryTx(configsdatabase.GetDB())
}

func NewBlogRepositoryTx(tx *gorm.DB) IBlogRepository {
	base := NewBaseRepository[models.BlogPost](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "title", "published_at"})
	return &BlogRepository{BaseRepository: base, db: tx}
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var post models.BlogPost
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *BlogRepository) FindPublished(ctx context.Context, now time.Time, params queryparams.ListParams) ([]models.BlogPost, int64, error) {
	return r.FindAllPaginated(ctx, params, func(q *gorm.DB) *gorm.DB {
		return q.Where("published_at IS NOT NULL AND published_at <= ?", now)
	})
}

var _ IBlogRepository = (*BlogRepository)(nil)

// ISiteContentRepository covers settings and page heroes together: the
// dashboard edits them on the same homepage-content screen.
type ISiteContentRepository interface {
	FindSettings(ctx context.Context, group string) ([]models.SiteSetting, error)
	FindSettingByKey(ctx context.Context, key string) (*models.SiteSetting, error)
	SaveSetting(ctx context.Context, setting *models.SiteSetting) error
	FindHeroes(ctx context.Context, pageKey string, activeOnly bool) ([]models.PageHero, error)
	FindHeroByID(ctx context.Context, id uint) (*models.PageHero, error)
	SaveHero(ctx context.Context, hero *models.PageHero) error
	DeleteHero(ctx context.Context, id uint, deletedByUserID uint) error
}

type SiteContentRepository struct {
	db       *gorm.DB
	heroBase *BaseRepository[models.PageHero]
}

func NewSiteContentRepository() ISiteContentRepository {
	return NewSiteContentRepositoryTx(configsdatabase.GetDB())
}

func NewSiteContentRepositoryTx(tx *gorm.DB) ISiteContentRepository {
	return &SiteContentRepository{db: tx, heroBase: NewBaseRepository[models.PageHero](tx)}
}

func (r *SiteContentRepository) FindSettings(ctx context.Context, group string) ([]models.SiteSetting, error) {
	var settings []models.SiteSetting
	query := r.db.WithContext(ctx).Order("setting_group asc, key asc")
	if group != "" {
		query = query.Where("setting_group = ?", group)
	}
	err := query.Find(&settings).Error
	return settings, err
}

func (r *SiteContentRepository) FindSettingByKey(ctx context.Context, key string) (*models.SiteSetting, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var setting models.SiteSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

func (r *SiteContentRepository) SaveSetting(ctx context.Context, setting *models.SiteSetting) error {
	if setting == nil || setting.Key == "" {
		return errors.New("cannot save invalid site setting")
	}
	return r.db.WithContext(ctx).Save(setting).Error
}

func (r *SiteContentRepository) FindHeroes(ctx context.Context, pageKey string, activeOnly bool) ([]models.PageHero, error) {
	var heroes []models.PageHero
	query := r.db.WithContext(ctx).Order("sort_order asc, id asc")
	if pageKey != "" {
		query = query.Where("page_key = ?", pageKey)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&heroes).Error
	return heroes, err
}

func (r *SiteContentRepository) FindHeroByID(ctx context.Context, id uint) (*models.PageHero, error) {
	return r.heroBase.FindByID(ctx, id)
}

func (r *SiteContentRepository) SaveHero(ctx context.Context, hero *models.PageHero) error {
	if hero == nil {
		return errors.New("cannot save nil page hero")
	}
	return r.db.WithContext(ctx).Save(hero).Error
}

func (r *SiteContentRepository) DeleteHero(ctx context.Context, id uint, deletedByUserID uint) error {
	return r.heroBase.Delete(ctx, id, deletedByUserID)
}

var _ ISiteContentRepository = (*SiteContentRepository)(nil)
