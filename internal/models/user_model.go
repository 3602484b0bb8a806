package models

import (
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleRegistrar = "registrar"
	RoleAnalyst   = "analyst"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:100" json:"email"`
	Password  string    `gorm:"size:255" json:"-"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Role      string    `gorm:"size:20;default:'registrar';index" json:"role"`
	Provider  string    `gorm:"size:50" json:"provider"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidGlobalRole(role string) bool {
	switch role {
	case RoleAdmin, RoleRegistrar, RoleAnalyst:
		return true
	}
	return false
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
