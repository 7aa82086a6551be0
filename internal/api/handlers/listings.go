package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/models"
	"github.com/0ji3/my-trend-search/internal/services"
)

const maxPageSize = 200

type ListingHandler struct {
	history services.MetricReader
}

func NewListingHandler(history services.MetricReader) *ListingHandler {
	return &ListingHandler{
		history: history,
	}
}

// GetListings returns a page of listings, active ones by default.
func (h *ListingHandler) GetListings(c *gin.Context) {
	active := true
	if activeStr := c.Query("active"); activeStr != "" {
		parsed, err := strconv.ParseBool(activeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
			return
		}
		active = parsed
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = parsed
	}
	pageSize := 50
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page_size must be between 1 and 200"})
			return
		}
		pageSize = parsed
	}

	db := database.GetDB()
	query := db.Model(&models.Listing{}).Where("is_active = ?", active)
	if accountID := c.Query("account_id"); accountID != "" {
		query = query.Where("account_id = ?", accountID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	listings := make([]models.Listing, 0)
	err := query.Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ListingsPage{
		Listings: listings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	db := database.GetDB()

	var listing models.Listing
	if err := db.First(&listing, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetListingMetrics returns a listing's daily snapshot series, defaulting to
// the trailing 30 days.
func (h *ListingHandler) GetListingMetrics(c *gin.Context) {
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
	start := end.AddDate(0, 0, -29)
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

	series, err := h.history.Range(listingID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.MetricHistoryResponse{
		ListingID:    listing.ID,
		ItemID:       listing.ItemID,
		Title:        listing.Title,
		StartDate:    services.DateOnly(start).Format("2006-01-02"),
		EndDate:      services.DateOnly(end).Format("2006-01-02"),
		Metrics:      series,
		TotalMetrics: len(series),
	})
}
