package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/tenancy"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProvisionService struct {
	db *gorm.DB
}

func NewProvisionService(db *gorm.DB) *ProvisionService {
	return &ProvisionService{db: db}
}

// ProvisionSchool prepares a newly created tenant: derives a unique slug from
// the school name when none was given, starts the tenant in trial status, and
// creates its default admin account.
func (s *ProvisionService) ProvisionSchool(school *models.School) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if school.Slug == "" {
			slug, err := s.uniqueSlug(tx, school.Name)
			if err != nil {
				return fmt.Errorf("failed to derive slug: %w", err)
			}
			school.Slug = slug
		}
		if school.Status == "" {
			school.Status = string(tenancy.StatusTrial)
		}
		if err := tx.Save(school).Error; err != nil {
			return fmt.Errorf("failed to save school: %w", err)
		}

		if _, err := s.createSchoolAdmin(tx, school); err != nil {
			return fmt.Errorf("failed to create school admin: %w", err)
		}
		return nil
	})
}

// createSchoolAdmin creates the default admin user for a school
func (s *ProvisionService) createSchoolAdmin(tx *gorm.DB, school *models.School) (*models.User, error) {
	email := fmt.Sprintf("admin@%s.schoolhub.app", school.Slug)
	password := "Admin@123"

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	schoolID := school.ID
	admin := &models.User{
		SchoolID:     &schoolID,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         string(tenancy.RoleAdmin),
		FullName:     fmt.Sprintf("%s Administrator", school.Name),
		IsActive:     true,
		Meta: models.JSONB{
			"default_password":     password,
			"must_change_password": true,
		},
	}

	if err := tx.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	return admin, nil
}

// CreateTeacher creates a new teacher account for a school
func (s *ProvisionService) CreateTeacher(schoolID uuid.UUID, fullName, email string) (*models.User, error) {
	password := "Teacher@123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	teacher := &models.User{
		SchoolID:     &schoolID,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         string(tenancy.RoleTeacher),
		FullName:     fullName,
		IsActive:     true,
		Meta: models.JSONB{
			"default_password":     password,
			"must_change_password": true,
		},
	}

	if err := s.db.Create(teacher).Error; err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	return teacher, nil
}

func (s *ProvisionService) uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := generateSlug(name)
	if base == "" {
		base = "school"
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.School{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func generateSlug(name string) string {
	// Simple slug generation - replace spaces with hyphens and convert to lowercase
	slug := ""
	for _, char := range name {
		if char == ' ' {
			slug += "-"
		} else if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') {
			if char >= 'A' && char <= 'Z' {
				slug += string(char + 32) // Convert to lowercase
			} else {
				slug += string(char)
			}
		}
	}
	return slug
}
