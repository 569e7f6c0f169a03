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

type UserHandler struct {
	db               *gorm.DB
	resolver         *tenancy.Resolver
	validator        *tenancy.Validator
	authService      *services.AuthService
	provisionService *services.ProvisionService
	auditService     *services.AuditService
}

func NewUserHandler(db *gorm.DB, resolver *tenancy.Resolver, validator *tenancy.Validator, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		db:               db,
		resolver:         resolver,
		validator:        validator,
		authService:      authService,
		provisionService: services.NewProvisionService(db),
		auditService:     services.NewAuditService(db),
	}
}

func (h *UserHandler) List(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin)
	if !ok {
		return
	}

	var users []models.User
	if err := h.db.Scopes(tenancy.Scoped(tc)).Preload("School").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin)
	if !ok {
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		FullName string `json:"full_name" binding:"required"`
		Role     string `json:"role" binding:"required"`
		Code     string `json:"code"`
		SchoolID string `json:"school_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := tenancy.Role(req.Role)
	if !tenancy.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}
	// Only platform admins mint platform admins, and only they pick the
	// target school; everyone else creates users inside their own tenant.
	if role == tenancy.RolePlatformAdmin && !tc.IsPlatformAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	user := &models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		Code:     req.Code,
		IsActive: true,
	}

	switch {
	case role == tenancy.RolePlatformAdmin:
		user.SchoolID = nil
	case tc.IsPlatformAdmin:
		if req.SchoolID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "School assignment required for tenant users"})
			return
		}
		schoolID, err := uuid.Parse(req.SchoolID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid school_id"})
			return
		}
		user.SchoolID = &schoolID
	default:
		user.SchoolID = tc.SchoolID
	}

	if err := h.authService.CreateUser(user, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "CREATE", "user", user.ID, nil, models.JSONB{"name": user.FullName, "role": user.Role}, c.ClientIP())
	}

	c.JSON(http.StatusCreated, user)
}

// CreateTeacher is the quick-provision path: a teacher account with a
// generated default password the user must change on first login.
func (h *UserHandler) CreateTeacher(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin)
	if !ok {
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		FullName string `json:"full_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if tc.SchoolID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "School assignment required for teachers"})
		return
	}

	teacher, err := h.provisionService.CreateTeacher(*tc.SchoolID, req.FullName, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "CREATE", "user", teacher.ID, nil, models.JSONB{"name": teacher.FullName, "role": teacher.Role}, c.ClientIP())
	}

	c.JSON(http.StatusCreated, teacher)
}

func (h *UserHandler) Get(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.Preload("School").First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := tenancy.AssertOwnership(user.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := tenancy.AssertOwnership(user.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
		Code     string `json:"code"`
		IsActive *bool  `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Role != "" {
		if !tenancy.ValidRole(tenancy.Role(req.Role)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		if tenancy.Role(req.Role) == tenancy.RolePlatformAdmin && !tc.IsPlatformAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		user.Role = req.Role
	}
	if req.Code != "" {
		user.Code = req.Code
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "UPDATE", "user", user.ID, nil, models.JSONB{"name": user.FullName}, c.ClientIP())
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	tc, ok := middleware.ValidateTenantAccess(c, h.resolver, h.validator, tenancy.RoleAdmin)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := tenancy.AssertOwnership(user.SchoolID, tc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if p := middleware.Principal(c); p != nil {
		h.auditService.Log(p.ID, "DELETE", "user", user.ID, models.JSONB{"name": user.FullName}, nil, c.ClientIP())
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
