package seeders

import (
	"context"
	"errors"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedSiteSettings inserts the settings the public templates read, so a fresh
// install renders without dashboard work. Existing keys are left alone.
func SeedSiteSettings(db *gorm.DB) error {
	ctx := models.ContextWithUserID(context.Background(), 1)

	defaults := []models.SiteSetting{
		{Key: "contact_email", Value: "hello@kiliheights.com", Group: "contact"},
		{Key: "contact_phone", Value: "+255 000 000 000", Group: "contact"},
		{Key: "whatsapp_number", Value: "+255 000 000 000", Group: "contact"},
		{Key: "office_address", Value: "Moshi, Kilimanjaro, Tanzania", Group: "contact"},
		{Key: "instagram_url", Value: "", Group: "social"},
		{Key: "facebook_url", Value: "", Group: "social"},
		{Key: "deposit_percent", Value: "30", Group: "booking"},
	}

	var createdCount int
	for _, setting := range defaults {
		var existing models.SiteSetting
		result := db.Where("key = ?", setting.Key).First(&existing)
		if result.Error == nil {
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Failed to check site setting",
				zap.String("key", setting.Key), zap.Error(result.Error))
			return result.Error
		}
		if err := db.WithContext(ctx).Create(&setting).Error; err != nil {
			configslog.Log.Error("Failed to seed site setting",
				zap.String("key", setting.Key), zap.Error(err))
			return err
		}
		createdCount++
	}

	if createdCount > 0 {
		configslog.SLog.Infof("%d site settings seeded", createdCount)
	} else {
		configslog.SLog.Info("All site settings already present")
	}
	return nil
}
