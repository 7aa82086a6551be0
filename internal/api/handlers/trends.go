package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/models"
	"github.com/0ji3/my-trend-search/internal/scheduler"
	"github.com/0ji3/my-trend-search/internal/services"
)

type TrendHandler struct {
	analyzer *services.TrendAnalyzer
	sched    *scheduler.Scheduler
}

func NewTrendHandler(analyzer *services.TrendAnalyzer, sched *scheduler.Scheduler) *TrendHandler {
	return &TrendHandler{
		analyzer: analyzer,
		sched:    sched,
	}
}

// parseDate parses a YYYY-MM-DD query or body value.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// GetTopTrending returns the highest-ranked trending listings for an account.
// Without a date parameter it uses the newest analysis date on record.
func (h *TrendHandler) GetTopTrending(c *gin.Context) {
	accountID := c.Query("account_id")
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'account_id' is required"})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	var day time.Time
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := parseDate(dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	} else {
		dates, err := h.analyzer.AvailableDates(accountID, 1)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(dates) > 0 {
			day, _ = parseDate(dates[0])
		} else {
			day = time.Now()
		}
	}

	trends, err := h.analyzer.GetTopTrending(accountID, day, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.TopTrendingResponse{
		AnalysisDate: services.DateOnly(day).Format("2006-01-02"),
		TotalCount:   len(trends),
		Trends:       trends,
	})
}

// GetAnalysisDates lists the dates with analysis results, newest first.
func (h *TrendHandler) GetAnalysisDates(c *gin.Context) {
	limit := 30
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 365"})
			return
		}
		limit = parsed
	}

	dates, err := h.analyzer.AvailableDates(c.Query("account_id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dates)
}

// GetListingHistory returns a listing's trend results over a date range,
// defaulting to the trailing 7 days.
func (h *TrendHandler) GetListingHistory(c *gin.Context) {
	listingID := c.Param("id")

	db := database.GetDB()
	var listing models.Listing
	if err := db.First(&listing, "id = ?", listingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}

	end := services.DateOnly(time.Now())
	if endStr := c.Query("end_date"); endStr != "" {
		parsed, err := parseDate(endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		end = parsed
	}
	start := end.AddDate(0, 0, -6)
	if startStr := c.Query("start_date"); startStr != "" {
		parsed, err := parseDate(startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must not be after end_date"})
		return
	}

	history, err := h.analyzer.ListingTrendHistory(listingID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.TrendHistoryResponse{
		ListingID: listing.ID,
		ItemID:    listing.ItemID,
		Title:     listing.Title,
		StartDate: services.DateOnly(start).Format("2006-01-02"),
		EndDate:   services.DateOnly(end).Format("2006-01-02"),
		History:   history,
	})
}

// TriggerAnalysis starts a trend analysis run in the background. With an
// account_id only that account is analyzed; otherwise all active accounts.
func (h *TrendHandler) TriggerAnalysis(c *gin.Context) {
	var req models.AnalyzeTriggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	day := time.Now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	if req.AccountID != "" {
		var account models.SellerAccount
		if err := database.GetDB().First(&account, "id = ?", req.AccountID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}

		go func() {
			if _, err := h.analyzer.AnalyzeAccount(context.Background(), account.ID, day); err != nil {
				log.Printf("API: manual analysis for account %s failed: %v", account.ID, err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{
			"status":  "accepted",
			"message": fmt.Sprintf("Trend analysis queued for account %s", account.ID),
		})
		return
	}

	if !h.sched.RunAnalysisAt(day) {
		c.JSON(http.StatusConflict, gin.H{"error": "analysis already running"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Trend analysis queued for all accounts",
	})
}
