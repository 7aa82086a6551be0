package services

import (
	"time"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/models"
)

// MetricReader provides ordered access to a listing's daily metric snapshots.
// Implemented by MetricHistoryService; tests substitute an in-memory fake.
type MetricReader interface {
	// Range returns the listing's snapshots with recorded_date in
	// [start, end] inclusive, ascending by date. Returns an empty slice,
	// not an error, when no snapshots exist in range. Days may be missing;
	// callers must not assume contiguous coverage.
	Range(listingID string, start, end time.Time) ([]models.DailyMetric, error)
}

// MetricHistoryService reads metric snapshots from the database.
type MetricHistoryService struct{}

func NewMetricHistoryService() *MetricHistoryService {
	return &MetricHistoryService{}
}

func (s *MetricHistoryService) Range(listingID string, start, end time.Time) ([]models.DailyMetric, error) {
	db := database.GetDB()

	snapshots := make([]models.DailyMetric, 0)
	err := db.Where("listing_id = ? AND recorded_date >= ? AND recorded_date <= ?",
		listingID, DateOnly(start), DateOnly(end)).
		Order("recorded_date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// DateOnly truncates a timestamp to its calendar date at UTC midnight. All
// recorded_date and analysis_date values pass through this so date equality
// is never confused by time-of-day or zone offsets.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
