package models

import "time"

// User is a back-office account. Guests and booking leads are not users; the
// public flows identify themselves only through booking references and tokens.
type User struct {
	BaseModel
	Name         string     `gorm:"type:varchar(150);not null"`
	Email        string     `gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	// PINHash backs the short-code login used by office staff on shared
	// devices. Empty means PIN login is disabled for the account.
	PINHash     string     `gorm:"type:varchar(255)" json:"-"`
	IsSystem    bool       `gorm:"default:false;index"`
	LastLoginAt *time.Time `gorm:"type:timestamptz"`
}
