package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/models"
)

type TenantHandler struct{}

func NewTenantHandler() *TenantHandler {
	return &TenantHandler{}
}

func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req models.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var existing models.Tenant
	if err := db.First(&existing, "email = ?", req.Email).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "tenant with this email already exists"})
		return
	}

	tenant := models.Tenant{
		Email:        req.Email,
		BusinessName: req.BusinessName,
		Timezone:     req.Timezone,
		Status:       models.TenantActive,
	}
	if tenant.Timezone == "" {
		tenant.Timezone = "UTC"
	}

	if err := db.Create(&tenant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandler) GetTenant(c *gin.Context) {
	db := database.GetDB()

	var tenant models.Tenant
	if err := db.Preload("Accounts").First(&tenant, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}

	c.JSON(http.StatusOK, tenant)
}
