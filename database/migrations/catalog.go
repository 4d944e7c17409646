package migrations

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateCatalogTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating trekking_routes and safari_packages tables...")
	if err := db.AutoMigrate(&models.TrekkingRoute{}, &models.SafariPackage{}); err != nil {
		configslog.Log.Error("Failed to migrate catalog tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Catalog tables migrated successfully")
	return nil
}
