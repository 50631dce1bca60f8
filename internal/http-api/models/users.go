package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values a user can hold. Staff users are admin-equivalent
// regardless of role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Bio       string `gorm:"type:text" json:"bio"`
	Role      string `gorm:"size:64;default:'user';not null" json:"role"`
	IsStaff   bool   `gorm:"default:false;not null" json:"-"`
	// Bcrypt hash of the last emailed confirmation code. Never serialized.
	ConfirmationCode string    `gorm:"column:confirmation_code" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

// IsAdmin reports whether the user carries admin authority, either via
// role or via the staff flag.
func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin || user.IsStaff
}

func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}

func (User) TableName() string {
	return "users"
}
