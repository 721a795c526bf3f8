package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a staff member of a salon
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SalonID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"salon_id"`
	FirstName   string         `gorm:"size:255;not null" json:"first_name"`
	LastName    string         `gorm:"size:255;not null" json:"last_name"`
	Email       string         `gorm:"size:255;unique;not null" json:"email"`
	Phone       *string        `gorm:"size:50" json:"phone,omitempty"`
	Password    string         `gorm:"size:255" json:"-"`
	Role        string         `gorm:"size:50;not null;default:'cashier'" json:"role"`
	Provider    string         `gorm:"size:50;default:'local'" json:"provider"`
	ProviderID  *string        `gorm:"size:255" json:"-"`
	Active      bool           `gorm:"default:true" json:"active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Salon Salon `gorm:"foreignKey:SalonID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsOwner reports whether the user owns the salon
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// Permissions returns the permissions granted by the user's role
func (u *User) Permissions() []string {
	return PermissionsForRole(u.Role)
}
