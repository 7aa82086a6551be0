// Package metrics provides Prometheus metrics for the trend search backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/0ji3/my-trend-search/internal/models"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trend_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trend_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Listing Sync Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trend_sync_runs_total",
			Help: "Total number of per-account sync runs by outcome",
		},
		[]string{"status"}, // "success", "partial", "failed"
	)

	SyncListingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trend_sync_listings_total",
			Help: "Total number of listings synced from the marketplace",
		},
	)

	SyncFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trend_sync_failures_total",
			Help: "Total number of individual listings that failed to sync",
		},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trend_sync_duration_seconds",
			Help:    "Time taken to sync a single seller account",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// eBay API Metrics
	EbayRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trend_ebay_requests_total",
			Help: "Total number of eBay API requests made",
		},
	)

	EbayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trend_ebay_errors_total",
			Help: "eBay API errors by type",
		},
		[]string{"type"}, // "network", "auth", "api", "parse"
	)

	// Trend Analysis Metrics
	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trend_analysis_runs_total",
			Help: "Total number of per-account trend analysis runs by outcome",
		},
		[]string{"status"}, // "success", "partial", "failed"
	)

	AnalysisListingsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trend_analysis_listings_scored_total",
			Help: "Total number of listings scored across all analysis runs",
		},
	)

	AnalysisListingsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trend_analysis_listings_skipped_total",
			Help: "Listings skipped during analysis because no metric data existed",
		},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trend_analysis_duration_seconds",
			Help:    "Time taken to score and rank a single account",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	TrendingListings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trend_trending_listings",
			Help: "Number of listings flagged as trending in the latest analysis",
		},
	)

	// Database Size Metrics
	ActiveListingsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trend_active_listings_total",
			Help: "Number of active listings tracked across all accounts",
		},
	)

	ActiveAccountsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trend_active_accounts_total",
			Help: "Number of active seller accounts",
		},
	)
)

// UpdateRegistrySizes refreshes the database-size gauges. Called after each
// sync pass so dashboards track registry growth without polling queries.
func UpdateRegistrySizes(db *gorm.DB) {
	var listings int64
	if err := db.Model(&models.Listing{}).Where("is_active = ?", true).Count(&listings).Error; err == nil {
		ActiveListingsTotal.Set(float64(listings))
	}
	var accounts int64
	if err := db.Model(&models.SellerAccount{}).Where("is_active = ?", true).Count(&accounts).Error; err == nil {
		ActiveAccountsTotal.Set(float64(accounts))
	}
}
