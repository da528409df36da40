package database

import (
	"fmt"
	"time"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every table in dependency order.
var Models = []interface{}{
	&models.AdminUser{},
	&models.Policy{},
	&models.Category{},
	&models.Fee{},
	&models.FeeLocation{},
	&models.FeeDetail{},
	&models.FeePairing{},
	&models.FeeCategory{},
	&models.SystemLog{},
}

// Open connects to Postgres and configures the connection pool.
func Open(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)

	logger.Info("database connection established",
		zap.Int("max_idle_conns", cfg.DBMaxIdleConns),
		zap.Int("max_open_conns", cfg.DBMaxOpenConns))
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
