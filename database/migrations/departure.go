package migrations

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateDeparturesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating group_departures table...")
	if err := db.AutoMigrate(&models.GroupDeparture{}); err != nil {
		configslog.Log.Error("Failed to migrate group_departures table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Group departures table migrated successfully")
	return nil
}

func MigrateRotationConfigTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating rotation_configs table...")
	if err := db.AutoMigrate(&models.RotationConfig{}); err != nil {
		configslog.Log.Error("Failed to migrate rotation_configs table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Rotation config table migrated successfully")
	return nil
}
