package api

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0ji3/my-trend-search/internal/api/handlers"
	"github.com/0ji3/my-trend-search/internal/metrics"
	"github.com/0ji3/my-trend-search/internal/scheduler"
	"github.com/0ji3/my-trend-search/internal/services"
)

func SetupRouter(analyzer *services.TrendAnalyzer, syncService *services.ListingSyncService, history services.MetricReader, sched *scheduler.Scheduler, corsOrigins []string) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from config or use defaults
	config := cors.DefaultConfig()
	if len(corsOrigins) > 0 {
		config.AllowOrigins = corsOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))

	router.Use(requestMetrics())

	// Initialize handlers
	trendHandler := handlers.NewTrendHandler(analyzer, sched)
	listingHandler := handlers.NewListingHandler(history)
	accountHandler := handlers.NewAccountHandler()
	tenantHandler := handlers.NewTenantHandler()
	syncHandler := handlers.NewSyncHandler(syncService, sched)

	// API routes
	api := router.Group("/api")
	{
		// Trend routes
		trends := api.Group("/trends")
		{
			trends.GET("/top", trendHandler.GetTopTrending)
			trends.GET("/dates", trendHandler.GetAnalysisDates)
			trends.GET("/listings/:id/history", trendHandler.GetListingHistory)
			trends.POST("/analyze", trendHandler.TriggerAnalysis)
		}

		// Listing routes
		listings := api.Group("/listings")
		{
			listings.GET("", listingHandler.GetListings)
			listings.GET("/:id", listingHandler.GetListing)
			listings.GET("/:id/metrics", listingHandler.GetListingMetrics)
		}

		// Seller account routes
		accounts := api.Group("/accounts")
		{
			accounts.GET("", accountHandler.GetAccounts)
			accounts.POST("", accountHandler.CreateAccount)
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.POST("/:id/deactivate", accountHandler.DeactivateAccount)
		}

		// Tenant routes
		tenants := api.Group("/tenants")
		{
			tenants.POST("", tenantHandler.CreateTenant)
			tenants.GET("/:id", tenantHandler.GetTenant)
		}

		// Sync routes
		sync := api.Group("/sync")
		{
			sync.POST("/trigger", syncHandler.TriggerSync)
			sync.GET("/logs", syncHandler.GetSyncLogs)
			sync.GET("/status", syncHandler.GetSyncStatus)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records request counts and latency per matched route. The
// route template is the label, not the raw URL, to keep cardinality bounded.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
