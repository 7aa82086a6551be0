package database

import (
	"fmt"
	"log"
	"time"

	"github.com/0ji3/my-trend-search/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the database for the given driver ("sqlite" or "mysql")
// and migrates the schema.
func Initialize(driver, dsn string) error {
	var err error
	switch driver {
	case "mysql":
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	case "sqlite", "":
		DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if driver == "mysql" {
		sqlDB, err := DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Println("Database connected successfully")

	// Duplicate rows would violate the unique indexes AutoMigrate adds below.
	if err := cleanupDuplicateDailyRows(DB); err != nil {
		log.Printf("Warning: duplicate cleanup failed: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Tenant{},
		&models.SellerAccount{},
		&models.Listing{},
		&models.DailyMetric{},
		&models.TrendResult{},
		&models.SyncLog{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
