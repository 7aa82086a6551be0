package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment
// (optionally seeded from a .env file).
type Config struct {
	Port        string
	CORSOrigins []string

	// Database
	DBDriver string // "sqlite" or "mysql"
	DBDSN    string

	// eBay API
	EbayEnvironment string // "sandbox" or "production"
	EbayAuthToken   string
	EbayMockMode    bool

	// Sync
	SyncBatchSize      int
	MaxItemsPerAccount int

	// Trend analysis
	TrendTopN        int
	TrendWorkerCount int

	// Scheduler (cron specs with seconds field)
	SyncCron     string
	AnalysisCron string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Config: loaded .env file")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		DBDSN:              getEnv("DB_DSN", "./trend_search.db"),
		EbayEnvironment:    getEnv("EBAY_ENVIRONMENT", "sandbox"),
		EbayAuthToken:      getEnv("EBAY_AUTH_TOKEN", ""),
		EbayMockMode:       getEnvBool("EBAY_MOCK_MODE", false),
		SyncBatchSize:      getEnvInt("SYNC_BATCH_SIZE", 100),
		MaxItemsPerAccount: getEnvInt("MAX_ITEMS_PER_ACCOUNT", 2000),
		TrendTopN:          getEnvInt("TREND_TOP_N", 10),
		TrendWorkerCount:   getEnvInt("TREND_WORKER_COUNT", 4),
		SyncCron:           getEnv("SYNC_CRON", "0 0 2 * * *"),
		AnalysisCron:       getEnv("ANALYSIS_CRON", "0 30 2 * * *"),
	}

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	} else {
		cfg.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	// Without a token the real client cannot authenticate; fall back to the
	// mock provider rather than failing every sync.
	if !cfg.EbayMockMode && cfg.EbayAuthToken == "" {
		log.Println("Config: EBAY_AUTH_TOKEN not set, enabling mock mode")
		cfg.EbayMockMode = true
	}

	return cfg
}

// TradingAPIURL returns the Trading API endpoint for the configured
// environment.
func (c *Config) TradingAPIURL() string {
	if c.EbayEnvironment == "production" {
		return "https://api.ebay.com/ws/api.dll"
	}
	return "https://api.sandbox.ebay.com/ws/api.dll"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Config: invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
