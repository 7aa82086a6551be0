package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/models"
)

type AccountHandler struct{}

func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var tenant models.Tenant
	if err := db.First(&tenant, "id = ?", req.TenantID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant not found"})
		return
	}

	var existing models.SellerAccount
	if err := db.First(&existing, "ebay_user_id = ?", req.EbayUserID).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "seller account already connected"})
		return
	}

	account := models.SellerAccount{
		TenantID:      req.TenantID,
		EbayUserID:    req.EbayUserID,
		Username:      req.Username,
		MarketplaceID: req.MarketplaceID,
		IsActive:      true,
	}
	if account.MarketplaceID == "" {
		account.MarketplaceID = "EBAY_US"
	}

	if err := db.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetAccounts(c *gin.Context) {
	db := database.GetDB()

	query := db.Model(&models.SellerAccount{})
	if tenantID := c.Query("tenant_id"); tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	accounts := make([]models.SellerAccount, 0)
	if err := query.Order("created_at DESC").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	db := database.GetDB()

	var account models.SellerAccount
	if err := db.First(&account, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// DeactivateAccount excludes an account from future syncs and analyses.
// Existing listings and results stay queryable.
func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	db := database.GetDB()

	var account models.SellerAccount
	if err := db.First(&account, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	account.IsActive = false
	if err := db.Save(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}
