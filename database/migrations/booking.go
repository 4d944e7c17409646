package migrations

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateBookingTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating bookings, climbers and climber_detail_tokens tables...")
	if err := db.AutoMigrate(&models.Booking{}, &models.Climber{}, &models.ClimberDetailToken{}); err != nil {
		configslog.Log.Error("Failed to migrate booking tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Booking tables migrated successfully")
	return nil
}
