package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"
	"kiliheights.com/pkg/queryparams"
	"kiliheights.com/repositories"

	"go.uber.org/zap"
)

// ContentServiceError covers partner, blog and homepage-content failures.
type ContentServiceError string

func (e ContentServiceError) Error() string { return string(e) }

const (
	ErrPartnerNotFound   ContentServiceError = "partner not found"
	ErrPartnerValidation ContentServiceError = "invalid partner fields"
	ErrPostNotFound      ContentServiceError = "blog post not found"
	ErrPostValidation    ContentServiceError = "invalid blog post fields"
	ErrPostSlugTaken     ContentServiceError = "a post with this slug already exists"
	ErrHeroNotFound      ContentServiceError = "page hero not found"
	ErrHeroValidation    ContentServiceError = "invalid page hero fields"
	ErrSettingValidation ContentServiceError = "invalid site setting"
)

// IContentService bundles the thin content concerns: partners, blog posts,
// page heroes and site settings. They share repositories and have no logic
// beyond validation, so one service keeps the wiring flat.
type IContentService interface {
	// Partners
	CreatePartner(ctx context.Context, userID uint, partner models.Partner) (*models.Partner, error)
	GetPartnerByID(ctx context.Context, id uint) (*models.Partner, error)
	ListActivePartners(ctx context.Context) ([]models.Partner, error)
	ListPartners(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdatePartner(ctx context.Context, id uint, userID uint, partner models.Partner) error
	DeletePartner(ctx context.Context, id uint, userID uint) error

	// Blog
	CreatePost(ctx context.Context, userID uint, post models.BlogPost) (*models.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ListPublishedPosts(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	ListPosts(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdatePost(ctx context.Context, id uint, userID uint, post models.BlogPost) error
	DeletePost(ctx context.Context, id uint, userID uint) error

	// Homepage content
	ListHeroes(ctx context.Context, pageKey string, activeOnly bool) ([]models.PageHero, error)
	SaveHero(ctx context.Context, userID uint, hero models.PageHero) (*models.PageHero, error)
	DeleteHero(ctx context.Context, id uint, userID uint) error
	ListSettings(ctx context.Context, group string) ([]models.SiteSetting, error)
	SaveSetting(ctx context.Context, userID uint, key, value string) error
}

type ContentService struct {
	partnerRepo repositories.IPartnerRepository
	blogRepo    repositories.IBlogRepository
	siteRepo    repositories.ISiteContentRepository
	now         func() time.Time
}

func NewContentService() IContentService {
	return &ContentService{
		partnerRepo: repositories.NewPartnerRepository(),
		blogRepo:    repositories.NewBlogRepository(),
		siteRepo:    repositories.NewSiteContentRepository(),
		now:         time.Now,
	}
}

// --- Partners ---

func (s *ContentService) CreatePartner(ctx context.Context, userID uint, partner models.Partner) (*models.Partner, error) {
	if strings.TrimSpace(partner.Name) == "" || strings.TrimSpace(partner.Slug) == "" {
		return nil, ErrPartnerValidation
	}
	ctx = models.ContextWithUserID(ctx, userID)
	if err := s.partnerRepo.Create(ctx, &partner); err != nil {
		configslog.Log.Error("partner creation failed", zap.String("slug", partner.Slug), zap.Error(err))
		return nil, err
	}
	return &partner, nil
}

func (s *ContentService) GetPartnerByID(ctx context.Context, id uint) (*models.Partner, error) {
	partner, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return partner, nil
}

func (s *ContentService) ListActivePartners(ctx context.Context) ([]models.Partner, error) {
	return s.partnerRepo.FindActive(ctx)
}

func (s *ContentService) ListPartners(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	partners, totalCount, err := s.partnerRepo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginate(partners, totalCount, params), nil
}

func (s *ContentService) UpdatePartner(ctx context.Context, id uint, userID uint, partner models.Partner) error {
	if strings.TrimSpace(partner.Name) == "" {
		return ErrPartnerValidation
	}
	existing, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPartnerNotFound
		}
		return err
	}
	partner.BaseModel = existing.BaseModel
	ctx = models.ContextWithUserID(ctx, userID)
	return s.partnerRepo.Update(ctx, &partner)
}

func (s *ContentService) DeletePartner(ctx context.Context, id uint, userID uint) error {
	if err := s.partnerRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPartnerNotFound
		}
		return err
	}
	return nil
}

// --- Blog ---

func (s *ContentService) CreatePost(ctx context.Context, userID uint, post models.BlogPost) (*models.BlogPost, error) {
	if strings.TrimSpace(post.Title) == "" || strings.TrimSpace(post.Slug) == "" {
		return nil, ErrPostValidation
	}
	if _, err := s.blogRepo.FindBySlug(ctx, post.Slug); err == nil {
		return nil, ErrPostSlugTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	ctx = models.ContextWithUserID(ctx, userID)
	if err := s.blogRepo.Create(ctx, &post); err != nil {
		configslog.Log.Error("blog post creation failed", zap.String("slug", post.Slug), zap.Error(err))
		return nil, err
	}
	return &post, nil
}

// GetPostBySlug serves the public article page; drafts read as not found.
func (s *ContentService) GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.blogRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.IsPublished(s.now().UTC()) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *ContentService) ListPublishedPosts(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	posts, totalCount, err := s.blogRepo.FindPublished(ctx, s.now().UTC(), params)
	if err != nil {
		return nil, err
	}
	return paginate(posts, totalCount, params), nil
}

func (s *ContentService) ListPosts(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	posts, totalCount, err := s.blogRepo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginate(posts, totalCount, params), nil
}

func (s *ContentService) UpdatePost(ctx context.Context, id uint, userID uint, post models.BlogPost) error {
	if strings.TrimSpace(post.Title) == "" {
		return ErrPostValidation
	}
	existing, err := s.blogRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	post.BaseModel = existing.BaseModel
	ctx = models.ContextWithUserID(ctx, userID)
	return s.blogRepo.Update(ctx, &post)
}

func (s *ContentService) DeletePost(ctx context.Context, id uint, userID uint) error {
	if err := s.blogRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

// --- Homepage content ---

func (s *ContentService) ListHeroes(ctx context.Context, pageKey string, activeOnly bool) ([]models.PageHero, error) {
	return s.siteRepo.FindHeroes(ctx, pageKey, activeOnly)
}

func (s *ContentService) SaveHero(ctx context.Context, userID uint, hero models.PageHero) (*models.PageHero, error) {
	if strings.TrimSpace(hero.PageKey) == "" || strings.TrimSpace(hero.Title) == "" {
		return nil, ErrHeroValidation
	}
	if hero.ID != 0 {
		existing, err := s.siteRepo.FindHeroByID(ctx, hero.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrHeroNotFound
			}
			return nil, err
		}
		hero.BaseModel = existing.BaseModel
	}
	ctx = models.ContextWithUserID(ctx, userID)
	if err := s.siteRepo.SaveHero(ctx, &hero); err != nil {
		configslog.Log.Error("page hero save failed", zap.String("pageKey", hero.PageKey), zap.Error(err))
		return nil, err
	}
	return &hero, nil
}

func (s *ContentService) DeleteHero(ctx context.Context, id uint, userID uint) error {
	if err := s.siteRepo.DeleteHero(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrHeroNotFound
		}
		return err
	}
	return nil
}

func (s *ContentService) ListSettings(ctx context.Context, group string) ([]models.SiteSetting, error) {
	return s.siteRepo.FindSettings(ctx, group)
}

// SaveSetting upserts by key so the dashboard form can post the whole group
// blind.
func (s *ContentService) SaveSetting(ctx context.Context, userID uint, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrSettingValidation
	}
	setting, err := s.siteRepo.FindSettingByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		setting = &models.SiteSetting{Key: key}
	}
	setting.Value = value
	ctx = models.ContextWithUserID(ctx, userID)
	return s.siteRepo.SaveSetting(ctx, setting)
}

var _ IContentService = (*ContentService)(nil)
