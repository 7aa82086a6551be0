package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/models"
	"github.com/0ji3/my-trend-search/internal/scheduler"
	"github.com/0ji3/my-trend-search/internal/services"
)

type SyncHandler struct {
	syncService *services.ListingSyncService
	sched       *scheduler.Scheduler
}

func NewSyncHandler(syncService *services.ListingSyncService, sched *scheduler.Scheduler) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		sched:       sched,
	}
}

// TriggerSync starts a listing sync in the background. With an account_id
// only that account is synced; otherwise all active accounts.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	var req models.SyncTriggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	db := database.GetDB()

	if req.AccountID != "" {
		var account models.SellerAccount
		if err := db.First(&account, "id = ?", req.AccountID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		if !account.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "account is not active"})
			return
		}

		go func() {
			if _, err := h.syncService.SyncAccount(context.Background(), &account); err != nil {
				log.Printf("API: manual sync for account %s failed: %v", account.ID, err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{
			"status":           "accepted",
			"message":          fmt.Sprintf("Sync triggered for account %s", account.EbayUserID),
			"accounts_to_sync": 1,
		})
		return
	}

	var count int64
	if err := db.Model(&models.SellerAccount{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no active seller accounts"})
		return
	}

	if !h.sched.RunSyncNow() {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already running"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":           "accepted",
		"message":          "Sync triggered for all active accounts",
		"accounts_to_sync": count,
	})
}

// GetSyncLogs returns recent sync runs, newest first.
func (h *SyncHandler) GetSyncLogs(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	db := database.GetDB()
	query := db.Model(&models.SyncLog{})
	if accountID := c.Query("account_id"); accountID != "" {
		query = query.Where("account_id = ?", accountID)
	}

	logs := make([]models.SyncLog, 0)
	if err := query.Order("synced_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}

// GetSyncStatus reports in-flight jobs plus a last-sync summary per active
// account.
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	status := h.sched.Status()

	db := database.GetDB()
	var accounts []models.SellerAccount
	if err := db.Where("is_active = ?", true).Order("last_sync_at DESC").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]gin.H, 0, len(accounts))
	for i := range accounts {
		var listingCount int64
		db.Model(&models.Listing{}).
			Where("account_id = ? AND is_active = ?", accounts[i].ID, true).
			Count(&listingCount)

		summaries = append(summaries, gin.H{
			"account_id":      accounts[i].ID,
			"ebay_user_id":    accounts[i].EbayUserID,
			"username":        accounts[i].Username,
			"last_sync_at":    accounts[i].LastSyncAt,
			"active_listings": listingCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sync_running":     status.SyncRunning,
		"analysis_running": status.AnalysisRunning,
		"accounts":         summaries,
		"total":            len(summaries),
	})
}
