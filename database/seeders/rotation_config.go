package seeders

import (
	"context"
	"errors"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedRotationConfig creates the singleton rotation row with its defaults.
// Existing config is never touched; the dashboard owns it from then on.
func SeedRotationConfig(db *gorm.DB) error {
	var existing models.RotationConfig
	result := db.Order("id asc").First(&existing)
	if result.Error == nil {
		configslog.SLog.Debug("Rotation config already present, skipping seed")
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Failed to check rotation config", zap.Error(result.Error))
		return result.Error
	}

	ctx := models.ContextWithUserID(context.Background(), 1)
	cfg := models.DefaultRotationConfig()
	if err := db.WithContext(ctx).Create(&cfg).Error; err != nil {
		configslog.Log.Error("Failed to seed rotation config", zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Rotation config seeded (ID: %d, max featured: %d)", cfg.ID, cfg.MaxFeatured)
	return nil
}
