package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:student"` // student, staff
	TeamID       *uint
	Team         *Team
	DisplayName  string
	RoleInSOC    string // e.g. "SIEM engineer", "IR lead"
	DiscordID    string
}

// IsStaff reports whether the user has universal access.
func (u *User) IsStaff() bool {
	return u != nil && u.Role == "staff"
}

type Team struct {
	gorm.Model
	Name     string `gorm:"unique;not null"`
	JoinCode string `gorm:"unique;not null;size:32"`
	OwnerID  *uint
	Owner    *User
}

// ClassConfig is a singleton row of per-class toggles.
type ClassConfig struct {
	gorm.Model
	StudentsCanCreateTeams bool `gorm:"default:true"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
