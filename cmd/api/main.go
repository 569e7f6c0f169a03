package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schoolhub/platform/internal/config"
	"github.com/schoolhub/platform/internal/database"
	"github.com/schoolhub/platform/internal/handlers"
	"github.com/schoolhub/platform/internal/middleware"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/services"
	"github.com/schoolhub/platform/internal/tenancy"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title SchoolHub Platform API
// @version 1.0
// @description Multi-tenant school management platform
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if len(os.Args) > 1 {
		handleCommand(os.Args[1])
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if cfg.Server.Env == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.Origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Static files
	r.Static("/logos", "./public/logos")

	// Health check - simple endpoint that doesn't require DB
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "schoolhub-platform"})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "SchoolHub Platform API", "status": "running"})
	})

	// Metrics
	if cfg.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Tenancy core
	schoolStore := services.NewSchoolService(db)
	resolver := tenancy.NewResolver(schoolStore)
	validator := tenancy.NewValidator(resolver)

	// Services
	authService := services.NewAuthService(db, cfg)
	principalRegistry := services.NewPrincipalRegistry(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, principalRegistry)
	userHandler := handlers.NewUserHandler(db, resolver, validator, authService)
	schoolHandler := handlers.NewSchoolHandler(db, resolver, validator)
	studentHandler := handlers.NewStudentHandler(db, resolver, validator)
	salaryHandler := handlers.NewSalaryHandler(db, resolver, validator)
	paymentHandler := handlers.NewPaymentHandler(db, resolver, validator)
	qualityHandler := handlers.NewQualityHandler(db, resolver, validator)
	auditHandler := handlers.NewAuditHandler(db, resolver, validator)

	// Session principal plus the edge gate run before everything else;
	// handlers then re-validate tenancy per data operation.
	r.Use(middleware.SessionPrincipal(authService))
	r.Use(middleware.RouteGuard(resolver, cfg))

	// Login and status pages; the UI in front of this API renders them,
	// these endpoints just echo the redirect reason.
	for _, path := range []string{"/login", "/admin/login", "/teachers/login", "/controller/login", "/super-admin/login"} {
		r.GET(path, func(c *gin.Context) {
			c.JSON(200, gin.H{"page": "login", "reason": c.Query("reason")})
		})
	}
	r.GET("/school-status", func(c *gin.Context) {
		c.JSON(200, gin.H{"page": "school-status", "state": c.Query("state"), "reason": c.Query("reason")})
	})

	// Session endpoints
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
	}

	// Explicit multi-tenant API namespace: /schools/<slug>/...
	schoolAPI := r.Group("/schools/:slug")
	{
		schoolAPI.GET("/students", studentHandler.List)
		schoolAPI.POST("/students", studentHandler.Create)
		schoolAPI.GET("/students/:id", studentHandler.Get)
		schoolAPI.PUT("/students/:id", studentHandler.Update)
		schoolAPI.DELETE("/students/:id", studentHandler.Delete)

		schoolAPI.GET("/payments", paymentHandler.List)
		schoolAPI.POST("/payments", paymentHandler.Create)
		schoolAPI.PUT("/payments/:id", paymentHandler.Update)

		schoolAPI.GET("/salaries", salaryHandler.List)
		schoolAPI.GET("/salaries/:id", salaryHandler.Get)

		schoolAPI.GET("/quality-reviews", qualityHandler.List)
		schoolAPI.POST("/quality-reviews", qualityHandler.Create)
		schoolAPI.PUT("/quality-reviews/:id", qualityHandler.Update)
	}

	// Platform admin area
	superAdmin := r.Group("/super-admin", middleware.RequireRole(tenancy.RolePlatformAdmin))
	{
		superAdmin.GET("/schools", schoolHandler.List)
		superAdmin.POST("/schools", schoolHandler.Create)
		superAdmin.GET("/schools/:id", schoolHandler.Get)
		superAdmin.PUT("/schools/:id", schoolHandler.Update)
		superAdmin.PATCH("/schools/:id/status", schoolHandler.UpdateStatus)
		superAdmin.DELETE("/schools/:id", schoolHandler.Delete)
		superAdmin.GET("/stats", schoolHandler.GetStats)

		superAdmin.GET("/users", userHandler.List)
		superAdmin.POST("/users", userHandler.Create)
		superAdmin.GET("/users/:id", userHandler.Get)
		superAdmin.PUT("/users/:id", userHandler.Update)
		superAdmin.DELETE("/users/:id", userHandler.Delete)

		superAdmin.GET("/audit/recent", auditHandler.GetRecentActivity)
	}

	// School admin area
	admin := r.Group("/admin", middleware.RequireRole(tenancy.RoleAdmin))
	{
		admin.GET("/students", studentHandler.List)
		admin.POST("/students", studentHandler.Create)
		admin.GET("/students/:id", studentHandler.Get)
		admin.PUT("/students/:id", studentHandler.Update)
		admin.DELETE("/students/:id", studentHandler.Delete)

		admin.GET("/payments", paymentHandler.List)
		admin.GET("/salaries", salaryHandler.List)
		admin.GET("/quality-reviews", qualityHandler.List)

		admin.GET("/users", userHandler.List)
		admin.POST("/users", userHandler.Create)
		admin.POST("/teachers", userHandler.CreateTeacher)
	}

	// Teacher area
	teachers := r.Group("/teachers", middleware.RequireRole(tenancy.RoleTeacher))
	{
		teachers.GET("/students", studentHandler.List)
		teachers.GET("/salaries/:id", salaryHandler.Get)
	}

	// Controller area
	controller := r.Group("/controller", middleware.RequireRole(tenancy.RoleController))
	{
		controller.GET("/salaries", salaryHandler.List)
		controller.GET("/quality-reviews", qualityHandler.List)
		controller.POST("/quality-reviews", qualityHandler.Create)
		controller.PUT("/quality-reviews/:id", qualityHandler.Update)
	}

	// Registral area
	dashboard := r.Group("/dashboard", middleware.RequireRole(tenancy.RoleRegistral))
	{
		dashboard.GET("/students", studentHandler.List)
		dashboard.POST("/students", studentHandler.Create)
		dashboard.GET("/payments", paymentHandler.List)
		dashboard.POST("/payments", paymentHandler.Create)
	}

	// Legacy tenant-scoped UI namespace: /<slug>/{admin|teachers|students|dashboard}/...
	legacy := r.Group("/:slug")
	{
		legacy.GET("/students", studentHandler.List)
		legacy.GET("/admin/students", studentHandler.List)
		legacy.GET("/admin/payments", paymentHandler.List)
		legacy.GET("/admin/salaries", salaryHandler.List)
		legacy.GET("/teachers/students", studentHandler.List)
		legacy.GET("/dashboard/students", studentHandler.List)
		legacy.GET("/dashboard/payments", paymentHandler.List)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func handleCommand(cmd string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	switch cmd {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			log.Fatal("Migration failed:", err)
		}
		log.Println("Migration completed successfully")

	case "seed-admin":
		seedAdmin(db, cfg)

	default:
		log.Printf("Unknown command: %s", cmd)
	}
}

func seedAdmin(db *gorm.DB, cfg *config.Config) {
	authService := services.NewAuthService(db, cfg)

	var count int64
	db.Model(&models.User{}).Where("role = ?", string(tenancy.RolePlatformAdmin)).Count(&count)
	if count > 0 {
		log.Println("Platform admin already exists")
		return
	}

	adminPassword := cfg.Server.SeedAdminSecret
	if adminPassword == "" {
		adminPassword = "Admin@123"
	}

	// Create platform admin without school assignment
	platformAdmin := &models.User{
		SchoolID: nil,
		Email:    "platform@schoolhub.app",
		FullName: "Platform Administrator",
		Role:     string(tenancy.RolePlatformAdmin),
		IsActive: true,
	}

	if err := authService.CreateUser(platformAdmin, adminPassword); err != nil {
		log.Fatal("Failed to create platform admin:", err)
	}

	log.Printf("Platform Admin: platform@schoolhub.app / %s", adminPassword)

	// Create demo school
	var school models.School
	if err := db.First(&school).Error; err != nil {
		school = models.School{
			Name:         "Greenwood High School",
			Slug:         "greenwood",
			Status:       string(tenancy.StatusActive),
			Address:      "12 Hillside Road",
			ContactEmail: "office@greenwood.example",
			Phone:        "+1-555-0142",
			Config:       models.JSONB{"levels": []string{"S1", "S2", "S3", "S4"}},
		}
		db.Create(&school)
	}

	seedUsers := []struct {
		email, name, role, password string
	}{
		{"admin@greenwood.example", "Greenwood Administrator", string(tenancy.RoleAdmin), "Admin@123"},
		{"teacher@greenwood.example", "Greenwood Teacher", string(tenancy.RoleTeacher), "Teacher@123"},
		{"registral@greenwood.example", "Greenwood Registral", string(tenancy.RoleRegistral), "Registral@123"},
		{"controller@greenwood.example", "Greenwood Controller", string(tenancy.RoleController), "Controller@123"},
	}

	for _, u := range seedUsers {
		user := &models.User{
			SchoolID: &school.ID,
			Email:    u.email,
			FullName: u.name,
			Role:     u.role,
			IsActive: true,
		}
		if err := authService.CreateUser(user, u.password); err != nil {
			log.Fatal("Failed to create seed user:", err)
		}
		log.Printf("%s: %s / %s", u.role, u.email, u.password)
	}
}
