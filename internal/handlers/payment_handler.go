package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/services"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	db           *gorm.DB
	resolver     *tenancy.Resolver
	validator    *tenancy.Validator
	auditService *services.AuditService
}

func NewPaymentHandler(db *gorm.DB, resolver *tenancy.Resolver, validator *tenancy.Validator) *PaymentHandler {
	return &PaymentHandler{
		db:           db,
		resolver:     resolver,
		validator:    validator,
		auditService: services.NewAuditService(db),
	}
}

func (h *PaymentHandler) List(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin, tenancy.RoleRegistral, tenancy.RoleController)
	if !ok {
		return
	}

	query := h.db.Scopes(tenancy.Scoped(tc)).Preload("Student")
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}

	var payments []models.Payment
	if err := query.Order("paid_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) Create(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin, tenancy.RoleRegistral)
	if !ok {
		return
	}

	var req struct {
		StudentID string  `json:"student_id" binding:"required"`
		Amount    float64 `json:"amount" binding:"required"`
		Method    string  `json:"method"`
		Reference string  `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student_id"})
		return
	}

	// The payment inherits its tenant from the student; the student itself
	// must belong to the caller's tenant first.
	var student models.Student
	if err := h.db.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err := tenancy.AssertOwnership(student.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	p := middleware.Principal(c)
	payment := models.Payment{
		SchoolID:   student.SchoolID,
		StudentID:  student.ID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		PaidAt:     time.Now(),
		RecordedBy: p.ID,
	}

	if err := h.db.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.auditService.Log(p.ID, "CREATE", "payment", payment.ID, nil, models.JSONB{"amount": payment.Amount, "student_id": payment.StudentID.String()}, c.ClientIP())

	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) Update(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin, tenancy.RoleRegistral)
	if !ok {
		return
	}

	var payment models.Payment
	if err := h.db.First(&payment, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	if err := tenancy.AssertOwnership(payment.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	var req struct {
		Method    string `json:"method"`
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Method != "" {
		payment.Method = req.Method
	}
	if req.Reference != "" {
		payment.Reference = req.Reference
	}

	if err := h.db.Save(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, payment)
}
