package database

import (
	"kiliheights.com/configs/configslog"
	"kiliheights.com/database/migrations"
	"kiliheights.com/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Initialize runs migrations and seeders inside one transaction, so a partial
// failure leaves the schema untouched.
func Initialize(db *gorm.DB, migrate bool, seed bool) {
	if !migrate && !seed {
		configslog.SLog.Info("Neither -migrate nor -seed given, nothing to do")
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Fatal("Could not begin database transaction", zap.Error(tx.Error))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Fatal("Database initialization panicked", zap.Any("panic_info", r))
		} else if err := tx.Error; err != nil && err != gorm.ErrInvalidTransaction {
			configslog.SLog.Warn("Rolling back after initialization error", zap.Error(err))
			rbErr := tx.Rollback().Error
			if rbErr != nil && rbErr != gorm.ErrInvalidTransaction {
				configslog.Log.Error("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	configslog.SLog.Info("Database initialization starting...")

	if migrate {
		configslog.SLog.Info("Running migrations...")
		if err := RunMigrationsInOrder(tx); err != nil {
			configslog.Log.Error("Migration failed", zap.Error(err))
			return
		}
		configslog.SLog.Info("Migrations complete")
	}

	if seed {
		configslog.SLog.Info("Running seeders...")
		if err := CheckAndRunSeeders(tx); err != nil {
			configslog.Log.Error("Seeding failed", zap.Error(err))
			return
		}
		configslog.SLog.Info("Seeders complete")
	}

	if err := tx.Commit().Error; err != nil {
		tx.Error = err
		configslog.Log.Error("Commit failed", zap.Error(err))
		return
	}

	configslog.SLog.Info("Database initialization finished successfully")
}

// RunMigrationsInOrder migrates tables respecting foreign-key dependencies:
// users first, then catalog, departures, bookings, content.
func RunMigrationsInOrder(db *gorm.DB) error {
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"users", migrations.MigrateUsersTable},
		{"catalog", migrations.MigrateCatalogTables},
		{"departures", migrations.MigrateDeparturesTable},
		{"rotation config", migrations.MigrateRotationConfigTable},
		{"bookings", migrations.MigrateBookingTables},
		{"content", migrations.MigrateContentTables},
	}
	for _, step := range steps {
		configslog.SLog.Infof(" -> migrating %s...", step.name)
		if err := step.run(db); err != nil {
			configslog.Log.Error("Migration step failed", zap.String("step", step.name), zap.Error(err))
			return err
		}
	}
	configslog.SLog.Info("All migrations ran successfully")
	return nil
}

func CheckAndRunSeeders(db *gorm.DB) error {
	if err := seeders.SeedSystemUser(db); err != nil {
		configslog.Log.Error("System user seed failed", zap.Error(err))
		return err
	}
	if err := seeders.SeedRotationConfig(db); err != nil {
		configslog.Log.Error("Rotation config seed failed", zap.Error(err))
		return err
	}
	if err := seeders.SeedSiteSettings(db); err != nil {
		configslog.Log.Error("Site settings seed failed", zap.Error(err))
		return err
	}
	configslog.SLog.Info("All seeders checked/ran successfully")
	return nil
}
