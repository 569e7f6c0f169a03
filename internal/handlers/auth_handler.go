package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	principals  *services.PrincipalRegistry
}

func NewAuthHandler(authService *services.AuthService, principals *services.PrincipalRegistry) *AuthHandler {
	return &AuthHandler{authService: authService, principals: principals}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} services.TokenPair
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	userResponse := gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      user.Role,
		"school_id": user.SchoolID,
	}

	// Include school details if user belongs to a school
	if user.School != nil {
		userResponse["school"] = gin.H{
			"id":            user.School.ID,
			"name":          user.School.Name,
			"slug":          user.School.Slug,
			"status":        user.School.Status,
			"address":       user.School.Address,
			"phone":         user.School.Phone,
			"contact_email": user.School.ContactEmail,
			"logo_url":      user.School.LogoURL,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
		"user":   userResponse,
	})
}

// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} services.TokenPair
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.authService.RefreshTokens(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// @Summary Logout
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.RevokeToken(req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// @Summary Current session principal
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.Principal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	// Re-resolve through the role-keyed source so deactivated or re-roled
	// users see it before their token expires.
	live, err := h.principals.Find(c.Request.Context(), p.Role, p.ID)
	if err != nil {
		if errors.Is(err, services.ErrPrincipalNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session no longer valid"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          live.ID,
		"role":        live.Role,
		"school_id":   live.SchoolID,
		"school_slug": live.SchoolSlug,
		"school_name": live.SchoolName,
		"code":        live.Code,
	})
}
