package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB custom type for JSON fields
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Base model with UUID
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// School represents a tenant. Slug identifies the school in request paths;
// Status gates whether the tenant may operate at all.
type School struct {
	BaseModel
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Slug         string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Status       string `gorm:"type:varchar(20);not null;default:'trial'" json:"status"`
	Address      string `gorm:"type:text" json:"address"`
	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email"`
	Phone        string `gorm:"type:varchar(50)" json:"phone"`
	LogoURL      string `gorm:"type:varchar(500)" json:"logo_url"`
	Config       JSONB  `gorm:"type:json" json:"config"`
}

// User represents platform principals. SchoolID is nil for platform admins
// and for legacy-deployment accounts that predate multi-tenancy.
type User struct {
	BaseModel
	SchoolID     *uuid.UUID `gorm:"type:char(36);index" json:"school_id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;index" json:"role"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Code         string     `gorm:"type:varchar(50)" json:"code"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	Meta         JSONB      `gorm:"type:json" json:"meta"`
	School       *School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// Student represents a student record owned by a tenant. A nil SchoolID
// means the record belongs to the legacy deployment.
type Student struct {
	BaseModel
	SchoolID    *uuid.UUID `gorm:"type:char(36);index" json:"school_id"`
	AdmissionNo string     `gorm:"type:varchar(50);not null;index" json:"admission_no"`
	FirstName   string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Gender      string     `gorm:"type:varchar(10)" json:"gender"`
	Level       string     `gorm:"type:varchar(50)" json:"level"`
	School      *School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// SalaryRecord is a per-teacher monthly salary row shown on the salary
// dashboard.
type SalaryRecord struct {
	BaseModel
	SchoolID  *uuid.UUID `gorm:"type:char(36);index:idx_salary_school_period" json:"school_id"`
	TeacherID uuid.UUID  `gorm:"type:char(36);not null;index" json:"teacher_id"`
	Month     int        `gorm:"not null;index:idx_salary_school_period" json:"month"`
	Year      int        `gorm:"not null;index:idx_salary_school_period" json:"year"`
	BasePay   float64    `gorm:"type:decimal(12,2);not null" json:"base_pay"`
	Bonus     float64    `gorm:"type:decimal(12,2);default:0" json:"bonus"`
	Deduction float64    `gorm:"type:decimal(12,2);default:0" json:"deduction"`
	Status    string     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Teacher   *User      `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// Payment is a fee payment row on the payment tables dashboard.
type Payment struct {
	BaseModel
	SchoolID   *uuid.UUID `gorm:"type:char(36);index" json:"school_id"`
	StudentID  uuid.UUID  `gorm:"type:char(36);not null;index" json:"student_id"`
	Amount     float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method     string     `gorm:"type:varchar(30)" json:"method"`
	Reference  string     `gorm:"type:varchar(100)" json:"reference"`
	PaidAt     time.Time  `json:"paid_at"`
	RecordedBy uuid.UUID  `gorm:"type:char(36);not null" json:"recorded_by"`
	Student    *Student   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// QualityReview is a quality-review form filled in by a controller about a
// teacher's lesson.
type QualityReview struct {
	BaseModel
	SchoolID   *uuid.UUID `gorm:"type:char(36);index" json:"school_id"`
	TeacherID  uuid.UUID  `gorm:"type:char(36);not null;index" json:"teacher_id"`
	ReviewerID uuid.UUID  `gorm:"type:char(36);not null" json:"reviewer_id"`
	Score      int        `gorm:"not null" json:"score"`
	Notes      string     `gorm:"type:text" json:"notes"`
	ObservedAt time.Time  `gorm:"type:date" json:"observed_at"`
	Criteria   JSONB      `gorm:"type:json" json:"criteria"`
	Teacher    *User      `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Reviewer   *User      `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// AuditLog tracks all data changes
type AuditLog struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ActorUserID  uuid.UUID `gorm:"type:char(36);index" json:"actor_user_id"`
	Action       string    `gorm:"type:varchar(50);not null" json:"action"`
	ResourceType string    `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   uuid.UUID `gorm:"type:char(36);index" json:"resource_id"`
	Before       JSONB     `gorm:"type:json" json:"before"`
	After        JSONB     `gorm:"type:json" json:"after"`
	Timestamp    time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	IP           string    `gorm:"type:varchar(45)" json:"ip"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// RefreshToken stores refresh tokens for revocation
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index" json:"user_id"`
	Token     string    `gorm:"type:varchar(500);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Revoked   bool      `gorm:"default:false;index" json:"revoked"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
