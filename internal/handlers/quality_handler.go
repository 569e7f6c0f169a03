package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

// QualityHandler serves quality review forms. The review content is opaque
// to this service; only tenant scoping and ownership are enforced here.
type QualityHandler struct {
	db        *gorm.DB
	resolver  *tenancy.Resolver
	validator *tenancy.Validator
}

func NewQualityHandler(db *gorm.DB, resolver *tenancy.Resolver, validator *tenancy.Validator) *QualityHandler {
	return &QualityHandler{db: db, resolver: resolver, validator: validator}
}

func (h *QualityHandler) List(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleController, tenancy.RoleAdmin)
	if !ok {
		return
	}

	query := h.db.Scopes(tenancy.Scoped(tc)).Preload("Teacher").Preload("Reviewer")
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}

	var reviews []models.QualityReview
	if err := query.Order("observed_at DESC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *QualityHandler) Create(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleController)
	if !ok {
		return
	}

	var req struct {
		TeacherID  string       `json:"teacher_id" binding:"required"`
		Score      int          `json:"score" binding:"required,min=1,max=100"`
		Notes      string       `json:"notes"`
		ObservedAt time.Time    `json:"observed_at"`
		Criteria   models.JSONB `json:"criteria"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	teacherID, err := uuid.Parse(req.TeacherID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher_id"})
		return
	}

	// Reviews inherit the reviewed teacher's tenant.
	var teacher models.User
	if err := h.db.First(&teacher, "id = ? AND role = ?", teacherID, string(tenancy.RoleTeacher)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}
	if err := tenancy.AssertOwnership(teacher.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	observedAt := req.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now()
	}

	p := middleware.Principal(c)
	review := models.QualityReview{
		SchoolID:   teacher.SchoolID,
		TeacherID:  teacher.ID,
		ReviewerID: p.ID,
		Score:      req.Score,
		Notes:      req.Notes,
		ObservedAt: observedAt,
		Criteria:   req.Criteria,
	}

	if err := h.db.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *QualityHandler) Update(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleController)
	if !ok {
		return
	}

	var review models.QualityReview
	if err := h.db.First(&review, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if err := tenancy.AssertOwnership(review.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	var req struct {
		Score    *int         `json:"score"`
		Notes    string       `json:"notes"`
		Criteria models.JSONB `json:"criteria"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Score != nil {
		review.Score = *req.Score
	}
	if req.Notes != "" {
		review.Notes = req.Notes
	}
	if req.Criteria != nil {
		review.Criteria = req.Criteria
	}

	if err := h.db.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, review)
}
