package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/services"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

type StudentHandler struct {
	db           *gorm.DB
	resolver     *tenancy.Resolver
	validator    *tenancy.Validator
	auditService *services.AuditService
}

func NewStudentHandler(db *gorm.DB, resolver *tenancy.Resolver, validator *tenancy.Validator) *StudentHandler {
	return &StudentHandler{
		db:           db,
		resolver:     resolver,
		validator:    validator,
		auditService: services.NewAuditService(db),
	}
}

func (h *StudentHandler) List(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator)
	if !ok {
		return
	}

	query := h.db.Scopes(tenancy.Scoped(tc))
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *StudentHandler) Get(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator)
	if !ok {
		return
	}

	var student models.Student
	if err := h.db.Scopes(tenancy.Scoped(tc)).First(&student, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Create(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin, tenancy.RoleRegistral)
	if !ok {
		return
	}

	var req struct {
		AdmissionNo string `json:"admission_no" binding:"required"`
		FirstName   string `json:"first_name" binding:"required"`
		LastName    string `json:"last_name" binding:"required"`
		Gender      string `json:"gender"`
		Level       string `json:"level"`
		SchoolID    string `json:"school_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// New records are stamped with the context's school; only platform
	// admins may choose one explicitly.
	schoolID := tc.SchoolID
	if tc.IsPlatformAdmin && req.SchoolID != "" {
		id, err := uuid.Parse(req.SchoolID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid school_id"})
			return
		}
		schoolID = &id
	}

	student := models.Student{
		SchoolID:    schoolID,
		AdmissionNo: req.AdmissionNo,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		Level:       req.Level,
	}

	if err := h.db.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "CREATE", "student", student.ID, nil, models.JSONB{"admission_no": student.AdmissionNo}, c.ClientIP())
	}

	c.JSON(http.StatusCreated, student)
}

func (h *StudentHandler) Update(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin, tenancy.RoleRegistral)
	if !ok {
		return
	}

	var student models.Student
	if err := h.db.First(&student, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	// Ownership denial reads exactly like a missing record.
	if err := tenancy.AssertOwnership(student.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Gender    string `json:"gender"`
		Level     string `json:"level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FirstName != "" {
		student.FirstName = req.FirstName
	}
	if req.LastName != "" {
		student.LastName = req.LastName
	}
	if req.Gender != "" {
		student.Gender = req.Gender
	}
	if req.Level != "" {
		student.Level = req.Level
	}

	if err := h.db.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Delete(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin)
	if !ok {
		return
	}

	var student models.Student
	if err := h.db.First(&student, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err := tenancy.AssertOwnership(student.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if err := h.db.Delete(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "DELETE", "student", student.ID, models.JSONB{"admission_no": student.AdmissionNo}, nil, c.ClientIP())
	}

	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}
