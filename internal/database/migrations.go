package database

import (
	"log"

	"gorm.io/gorm"
)

// cleanupDuplicateDailyRows removes duplicate daily_metrics and trend_results
// entries before the unique constraints are added. This runs BEFORE
// AutoMigrate to prevent constraint violations on databases written by
// older versions that allowed more than one row per listing per day.
func cleanupDuplicateDailyRows(db *gorm.DB) error {
	if db.Migrator().HasTable("daily_metrics") {
		// Keep the most recently inserted row for each (listing, date) pair.
		result := db.Exec(`
			DELETE FROM daily_metrics
			WHERE id NOT IN (
				SELECT keep_id FROM (
					SELECT MAX(id) AS keep_id
					FROM daily_metrics
					GROUP BY listing_id, recorded_date
				) keepers
			)
		`)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("Cleaned up %d duplicate daily_metrics entries", result.RowsAffected)
		}
	}

	if db.Migrator().HasTable("trend_results") {
		result := db.Exec(`
			DELETE FROM trend_results
			WHERE id NOT IN (
				SELECT keep_id FROM (
					SELECT MAX(id) AS keep_id
					FROM trend_results
					GROUP BY listing_id, analysis_date
				) keepers
			)
		`)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("Cleaned up %d duplicate trend_results entries", result.RowsAffected)
		}
	}

	return nil
}
