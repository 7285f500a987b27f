package services

import (
	"fmt"

	"rover-backend/config"
	"rover-backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDatabase connects the run-event store selected by cfg.Driver and
// migrates its schema. Driver "none" returns a nil DB and no error.
func OpenDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case config.DriverNone, "":
		logger.Info("⚠️ run-event store disabled")
		return nil, nil
	case config.DriverMySQL:
		if cfg.MySQL.Host == "" || cfg.MySQL.User == "" || cfg.MySQL.Database == "" {
			return nil, fmt.Errorf("mysql config incomplete: MYSQL_HOST, MYSQL_USER and MYSQL_DATABASE are required")
		}
		dialector = mysql.Open(cfg.MySQL.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("✅ run-event store ready", zap.String("driver", cfg.Driver), zap.String("target", cfg.Redacted()))
	return db, nil
}

// Migrate creates or updates the run-event table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.RunEvent{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
