package seeders

import (
	"errors"
	"os"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSystemUser ensures the back-office account exists and tracks the
// ADMIN_* environment values. The account is created with ID 1 on a fresh
// database so audit columns can point at it.
func SeedSystemUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		configslog.SLog.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping system user seed")
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var pinHash []byte
	if pin := os.Getenv("ADMIN_PIN"); pin != "" {
		pinHash, err = bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
	}

	var existing models.User
	result := db.Where("LOWER(email) = LOWER(?)", email).First(&existing)
	if result.Error == nil {
		existing.PasswordHash = string(passwordHash)
		existing.PINHash = string(pinHash)
		existing.IsSystem = true
		if err := db.Save(&existing).Error; err != nil {
			configslog.Log.Error("Failed to update system user", zap.Error(err))
			return err
		}
		configslog.SLog.Infof("System user %s updated (ID: %d)", email, existing.ID)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Failed to look up system user", zap.Error(result.Error))
		return result.Error
	}

	user := models.User{
		Name:         "System",
		Email:        email,
		PasswordHash: string(passwordHash),
		PINHash:      string(pinHash),
		IsSystem:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		configslog.Log.Error("Failed to create system user", zap.Error(err))
		return err
	}

	configslog.SLog.Infof("System user %s created (ID: %d)", email, user.ID)
	return nil
}
