package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

// SalaryHandler serves the salary dashboard: scoped reads only, the salary
// amounts themselves come from payroll workflows outside this service.
type SalaryHandler struct {
	db        *gorm.DB
	resolver  *tenancy.Resolver
	validator *tenancy.Validator
}

func NewSalaryHandler(db *gorm.DB, resolver *tenancy.Resolver, validator *tenancy.Validator) *SalaryHandler {
	return &SalaryHandler{db: db, resolver: resolver, validator: validator}
}

func (h *SalaryHandler) List(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin, tenancy.RoleController)
	if !ok {
		return
	}

	query := h.db.Scopes(tenancy.Scoped(tc)).Preload("Teacher")
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}

	var records []models.SalaryRecord
	if err := query.Order("year DESC, month DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *SalaryHandler) Get(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin, tenancy.RoleController, tenancy.RoleTeacher)
	if !ok {
		return
	}

	var record models.SalaryRecord
	if err := h.db.Scopes(tenancy.Scoped(tc)).Preload("Teacher").First(&record, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Salary record not found"})
		return
	}

	// Teachers may only see their own rows.
	if p := middleware.Principal(c); p != nil && p.Role == tenancy.RoleTeacher && record.TeacherID != p.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Salary record not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}
