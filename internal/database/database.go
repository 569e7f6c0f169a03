package database

import (
	"fmt"
	"log"

	"github.com/schoolhub/platform/internal/config"
	"github.com/schoolhub/platform/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	log.Printf("Attempting database connection with DSN: %s", maskPassword(cfg.Database.DSN))

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func maskPassword(dsn string) string {
	// Simple password masking for logging
	if len(dsn) > 20 {
		return dsn[:20] + "...***..."
	}
	return "***"
}

func Migrate(db *gorm.DB) error {
	log.Println("Running migrations...")

	err := db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.Student{},
		&models.SalaryRecord{},
		&models.Payment{},
		&models.QualityReview{},
		&models.AuditLog{},
		&models.RefreshToken{},
	)
	if err != nil {
		return err
	}

	// Add performance indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_schools_slug ON schools(slug)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_students_school ON students(school_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_payments_school ON payments(school_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_salary_records_teacher ON salary_records(teacher_id)")

	return nil
}
