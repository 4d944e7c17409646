package configsdatabase

import (
	"fmt"
	"os"
	"time"

	"kiliheights.com/configs/configslog"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the Postgres connection pool from DATABASE_* environment
// variables and keeps the handle in package state. Fatal on failure: nothing
// in this application works without the database.
func InitDB() {
	host := getEnv("DATABASE_HOST", "localhost")
	port := getEnv("DATABASE_PORT", "5432")
	user := getEnv("DATABASE_USER", "kiliheights")
	pass := os.Getenv("DATABASE_PASSWORD")
	name := getEnv("DATABASE_NAME", "kiliheights")
	sslMode := getEnv("DATABASE_SSLMODE", "disable")
	tz := getEnv("DATABASE_TIMEZONE", "UTC")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		host, port, user, pass, name, sslMode, tz)

	logLevel := gormlogger.Warn
	if os.Getenv("APP_ENV") != "production" {
		logLevel = gormlogger.Info
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		configslog.Log.Fatal("failed to connect to database",
			zap.String("host", host), zap.String("database", name), zap.Error(err))
	}

	sqlDB, err := conn.DB()
	if err != nil {
		configslog.Log.Fatal("failed to access underlying sql.DB", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db = conn
	configslog.SLog.Infof("database connection established: %s@%s/%s", user, host, name)
}

// GetDB returns the shared *gorm.DB. InitDB must have run first.
func GetDB() *gorm.DB {
	if db == nil {
		configslog.Log.Fatal("GetDB called before InitDB")
	}
	return db
}

// CloseDB closes the underlying connection pool.
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("failed to access sql.DB on close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("failed to close database connection", zap.Error(err))
		return
	}
	configslog.SLog.Info("database connection closed")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
