package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

// SchoolService backs the tenancy core's school lookups with the schools
// table. Missing rows map to tenancy.ErrSchoolNotFound; anything else is a
// lookup failure the caller classifies.
type SchoolService struct {
	db *gorm.DB
}

func NewSchoolService(db *gorm.DB) *SchoolService {
	return &SchoolService{db: db}
}

func (s *SchoolService) BySlug(ctx context.Context, slug string) (*tenancy.School, error) {
	var school models.School
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&school).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenancy.ErrSchoolNotFound
		}
		return nil, err
	}
	return snapshot(&school), nil
}

func (s *SchoolService) ByID(ctx context.Context, id uuid.UUID) (*tenancy.School, error) {
	var school models.School
	if err := s.db.WithContext(ctx).First(&school, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenancy.ErrSchoolNotFound
		}
		return nil, err
	}
	return snapshot(&school), nil
}

func snapshot(school *models.School) *tenancy.School {
	return &tenancy.School{
		ID:     school.ID,
		Name:   school.Name,
		Slug:   school.Slug,
		Status: tenancy.SchoolStatus(school.Status),
	}
}
