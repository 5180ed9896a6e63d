package models

import (
	"time"

	"supportly/internal/domain"

	"gorm.io/gorm"
)

// User mirrors the identity service's account row; only what payments need.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	DisplayName string         `gorm:"size:128" json:"display_name"`
	Email       string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role        string         `gorm:"size:20;not null;index" json:"role"` // CREATOR | SUPPORTER | ADMIN
	FCMToken    string         `gorm:"size:512" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsCreator() bool { return u.Role == domain.RoleCreator }

// Name returns the best display label for notifications.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
