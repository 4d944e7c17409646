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

// SafariServiceError covers safari package failures.
type SafariServiceError string

func (e SafariServiceError) Error() string { return string(e) }

const (
	ErrSafariNotFound       SafariServiceError = "safari package not found"
	ErrSafariValidation     SafariServiceError = "invalid safari fields"
	ErrSafariSlugTaken      SafariServiceError = "a safari with this slug already exists"
	ErrSafariContentInvalid SafariServiceError = "safari content payload is malformed"
)

// ISafariService covers safari package management and public reads.
type ISafariService interface {
	CreateSafari(ctx context.Context, createdByUserID uint, safari models.SafariPackage) (*models.SafariPackage, error)
	GetSafariByID(ctx context.Context, id uint) (*models.SafariPackage, error)
	GetSafariBySlug(ctx context.Context, slug string) (*models.SafariPackage, error)
	ListPublishedSafaris(ctx context.Context) ([]models.SafariPackage, error)
	ListSafaris(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateSafari(ctx context.Context, id uint, updatedByUserID uint, safari models.SafariPackage) error
	DeleteSafari(ctx context.Context, id uint, deletedByUserID uint) error
}

type SafariService struct {
	repo repositories.ISafariRepository
}

func NewSafariService() ISafariService {
	return &SafariService{repo: repositories.NewSafariRepository()}
}

func validateSafari(safari models.SafariPackage) error {
	if strings.TrimSpace(safari.Name) == "" || strings.TrimSpace(safari.Slug) == "" {
		return ErrSafariValidation
	}
	if safari.DurationDays < 1 {
		return ErrSafariValidation
	}
	if _, err := itinerary.ParseDays(safari.ItineraryJSON); err != nil {
		return errors.Join(ErrSafariContentInvalid, err)
	}
	if _, err := itinerary.ParseGallery(safari.GalleryJSON); err != nil {
		return errors.Join(ErrSafariContentInvalid, err)
	}
	return nil
}

func (s *SafariService) CreateSafari(ctx context.Context, createdByUserID uint, safari models.SafariPackage) (*models.SafariPackage, error) {
	if err := validateSafari(safari); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBySlug(ctx, safari.Slug); err == nil {
		return nil, ErrSafariSlugTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	ctx = models.ContextWithUserID(ctx, createdByUserID)
	if err := s.repo.Create(ctx, &safari); err != nil {
		configslog.Log.Error("safari creation failed", zap.String("slug", safari.Slug), zap.Error(err))
		return nil, err
	}
	configslog.SLog.Infof("safari created: %s (ID %d)", safari.Slug, safari.ID)
	return &safari, nil
}

func (s *SafariService) GetSafariByID(ctx context.Context, id uint) (*models.SafariPackage, error) {
	safari, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSafariNotFound
		}
		return nil, err
	}
	return safari, nil
}

func (s *SafariService) GetSafariBySlug(ctx context.Context, slug string) (*models.SafariPackage, error) {
	safari, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSafariNotFound
		}
		return nil, err
	}
	return safari, nil
}

func (s *SafariService) ListPublishedSafaris(ctx context.Context) ([]models.SafariPackage, error) {
	return s.repo.FindPublished(ctx)
}

func (s *SafariService) ListSafaris(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	safaris, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginate(safaris, totalCount, params), nil
}

func (s *SafariService) UpdateSafari(ctx context.Context, id uint, updatedByUserID uint, safari models.SafariPackage) error {
	if err := validateSafari(safari); err != nil {
		return err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSafariNotFound
		}
		return err
	}
	if safari.Slug != existing.Slug {
		if _, err := s.repo.FindBySlug(ctx, safari.Slug); err == nil {
			return ErrSafariSlugTaken
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
	}

	safari.BaseModel = existing.BaseModel
	ctx = models.ContextWithUserID(ctx, updatedByUserID)
	if err := s.repo.Update(ctx, &safari); err != nil {
		configslog.Log.Error("safari update failed", zap.Uint("id", id), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("safari updated: %s (by user %d)", safari.Slug, updatedByUserID)
	return nil
}

func (s *SafariService) DeleteSafari(ctx context.Context, id uint, deletedByUserID uint) error {
	if err := s.repo.Delete(ctx, id, deletedByUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSafariNotFound
		}
		return err
	}
	configslog.SLog.Infof("safari deleted: ID %d (by user %d)", id, deletedByUserID)
	return nil
}

var _ ISafariService = (*SafariService)(nil)
