package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/services"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

type SchoolHandler struct {
	db               *gorm.DB
	resolver         *tenancy.Resolver
	validator        *tenancy.Validator
	provisionService *services.ProvisionService
	auditService     *services.AuditService
}

func NewSchoolHandler(db *gorm.DB, resolver *tenancy.Resolver, validator *tenancy.Validator) *SchoolHandler {
	return &SchoolHandler{
		db:               db,
		resolver:         resolver,
		validator:        validator,
		provisionService: services.NewProvisionService(db),
		auditService:     services.NewAuditService(db),
	}
}

// List returns all tenants for platform admins and only the caller's own
// school for everyone else.
func (h *SchoolHandler) List(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator)
	if !ok {
		return
	}

	query := h.db
	if !tc.IsPlatformAdmin {
		if tc.SchoolID == nil {
			c.JSON(http.StatusOK, []models.School{})
			return
		}
		query = query.Where("id = ?", *tc.SchoolID)
	}

	var schools []models.School
	if err := query.Find(&schools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schools)
}

func (h *SchoolHandler) Create(c *gin.Context) {
	if _, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RolePlatformAdmin); !ok {
		return
	}

	var school models.School
	if err := c.ShouldBindJSON(&school); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Create(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Derives the slug and creates the default school admin.
	if err := h.provisionService.ProvisionSchool(&school); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to provision school: " + err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "CREATE", "school", school.ID, nil, models.JSONB{"name": school.Name, "slug": school.Slug}, c.ClientIP())
	}

	c.JSON(http.StatusCreated, school)
}

func (h *SchoolHandler) Get(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator)
	if !ok {
		return
	}

	var school models.School
	if err := h.db.First(&school, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	// Non-platform callers only see their own tenant.
	id := school.ID
	if err := tenancy.AssertOwnership(&id, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	c.JSON(http.StatusOK, school)
}

func (h *SchoolHandler) Update(c *gin.Context) {
	if _, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RolePlatformAdmin); !ok {
		return
	}

	var school models.School
	if err := h.db.First(&school, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	var updateData models.School
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	school.Name = updateData.Name
	school.Address = updateData.Address
	school.ContactEmail = updateData.ContactEmail
	school.Phone = updateData.Phone
	school.LogoURL = updateData.LogoURL
	school.Config = updateData.Config

	if err := h.db.Save(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, school)
}

// UpdateStatus switches a tenant between active/trial/suspended and the
// terminal states. Takes effect on the next request each affected session
// makes; no logout is required.
func (h *SchoolHandler) UpdateStatus(c *gin.Context) {
	if _, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RolePlatformAdmin); !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch tenancy.SchoolStatus(req.Status) {
	case tenancy.StatusActive, tenancy.StatusTrial, tenancy.StatusSuspended,
		tenancy.StatusInactive, tenancy.StatusExpired, tenancy.StatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var school models.School
	if err := h.db.First(&school, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	before := school.Status
	school.Status = req.Status
	if err := h.db.Save(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "UPDATE", "school", school.ID, models.JSONB{"status": before}, models.JSONB{"status": school.Status}, c.ClientIP())
	}

	c.JSON(http.StatusOK, school)
}

func (h *SchoolHandler) Delete(c *gin.Context) {
	if _, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RolePlatformAdmin); !ok {
		return
	}

	id := c.Param("id")
	var school models.School
	if err := h.db.First(&school, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	// Cascade delete all related data in proper order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM payments WHERE student_id IN (SELECT id FROM students WHERE school_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.QualityReview{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.SalaryRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.Student{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ? AND role != ?", id, string(tenancy.RolePlatformAdmin)).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&school).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete school: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "School and all related data deleted successfully"})
}

func (h *SchoolHandler) GetStats(c *gin.Context) {
	if _, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RolePlatformAdmin); !ok {
		return
	}

	type Stats struct {
		SchoolsByStatus map[string]int64 `json:"schools_by_status"`
		UsersByRole     map[string]int64 `json:"users_by_role"`
		TotalStudents   int64            `json:"total_students"`
		TotalSchools    int64            `json:"total_schools"`
		TotalUsers      int64            `json:"total_users"`
	}

	stats := Stats{
		SchoolsByStatus: make(map[string]int64),
		UsersByRole:     make(map[string]int64),
	}

	var statusResults []struct {
		Status string
		Count  int64
	}
	h.db.Model(&models.School{}).Select("status, COUNT(*) as count").Group("status").Scan(&statusResults)
	for _, result := range statusResults {
		stats.SchoolsByStatus[result.Status] = result.Count
	}

	var roleResults []struct {
		Role  string
		Count int64
	}
	h.db.Model(&models.User{}).Select("role, COUNT(*) as count").Group("role").Scan(&roleResults)
	for _, result := range roleResults {
		stats.UsersByRole[result.Role] = result.Count
	}

	h.db.Model(&models.School{}).Count(&stats.TotalSchools)
	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.Student{}).Count(&stats.TotalStudents)

	c.JSON(http.StatusOK, stats)
}
