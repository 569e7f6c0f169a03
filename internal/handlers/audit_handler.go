package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

type AuditHandler struct {
	db        *gorm.DB
	resolver  *tenancy.Resolver
	validator *tenancy.Validator
}

func NewAuditHandler(db *gorm.DB, resolver *tenancy.Resolver, validator *tenancy.Validator) *AuditHandler {
	return &AuditHandler{db: db, resolver: resolver, validator: validator}
}

func (h *AuditHandler) GetRecentActivity(c *gin.Context) {
	if _, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RolePlatformAdmin); !ok {
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit > 100 {
		limit = 20
	}

	type ActivityWithUser struct {
		models.AuditLog
		UserName   string `json:"user_name"`
		SchoolName string `json:"school_name,omitempty"`
	}

	var activities []ActivityWithUser
	if err := h.db.Table("audit_logs").
		Select("audit_logs.*, users.full_name as user_name, schools.name as school_name").
		Joins("LEFT JOIN users ON audit_logs.actor_user_id = users.id").
		Joins("LEFT JOIN schools ON users.school_id = schools.id").
		Order("audit_logs.timestamp DESC").
		Limit(limit).
		Scan(&activities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, activities)
}
