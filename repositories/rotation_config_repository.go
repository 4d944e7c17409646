package repositories

import (
	"context"
	"errors"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/models"

	"gorm.io/gorm"
)

// IRotationConfigRepository manages the singleton rotation configuration row.
type IRotationConfigRepository interface {
	Get(ctx context.Context) (*models.RotationConfig, error)
	Save(ctx context.Context, cfg *models.RotationConfig) error
}

type RotationConfigRepository struct {
	db *gorm.DB
}

func NewRotationConfigRepository() IRotationConfigRepository {
	return &RotationConfigRepository{db: configsdatabase.GetDB()}
}

func NewRotationConfigRepositoryTx(tx *gorm.DB) IRotationConfigRepository {
	return &RotationConfigRepository{db: tx}
}

// Get returns the singleton row, or ErrNotFound when it was never seeded.
// Callers fall back to models.DefaultRotationConfig in that case.
func (r *RotationConfigRepository) Get(ctx context.Context) (*models.RotationConfig, error) {
	var cfg models.RotationConfig
	err := r.db.WithContext(ctx).Order("id asc").First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// Save upserts the singleton: creates on first save, updates afterwards.
func (r *RotationConfigRepository) Save(ctx context.Context, cfg *models.RotationConfig) error {
	if cfg == nil {
		return errors.New("cannot save nil rotation config")
	}
	return r.db.WithContext(ctx).Save(cfg).Error
}

var _ IRotationConfigRepository = (*RotationConfigRepository)(nil)
