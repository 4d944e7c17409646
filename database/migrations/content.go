package migrations

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateContentTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating partners, page_heroes, site_settings and blog_posts tables...")
	err := db.AutoMigrate(
		&models.Partner{},
		&models.PageHero{},
		&models.SiteSetting{},
		&models.BlogPost{},
	)
	if err != nil {
		configslog.Log.Error("Failed to migrate content tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Content tables migrated successfully")
	return nil
}
