package models

import (
	"time"

	"shipfire/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"uniqueIndex;size:64;not null" json:"uuid"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Nickname     string         `gorm:"size:64" json:"nickname"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // user | admin
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }
