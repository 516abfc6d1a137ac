package services

import (
	"errors"

	"gorm.io/gorm"

	"socdocs/backend/models"
)

// TeamOf returns the user's team or nil. Having no team is a normal,
// common result, never an error.
func TeamOf(db *gorm.DB, user *models.User) *models.Team {
	if user == nil || user.TeamID == nil {
		return nil
	}
	var team models.Team
	if err := db.First(&team, *user.TeamID).Error; err != nil {
		return nil
	}
	return &team
}

// IsStaff reports whether the user has universal access.
func IsStaff(user *models.User) bool {
	return user.IsStaff()
}

// ViewerFor builds the Viewer snapshot used by the visibility engine.
// A nil user is an anonymous viewer.
func ViewerFor(user *models.User) Viewer {
	if user == nil {
		return Viewer{}
	}
	return Viewer{
		Authenticated: true,
		ID:            user.ID,
		TeamID:        user.TeamID,
		Staff:         user.IsStaff(),
	}
}

// GetUser loads a user by ID, nil for an unknown ID.
func GetUser(db *gorm.DB, id uint) *models.User {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil
	}
	return &user
}

// LoadClassSettings returns the singleton class configuration, creating
// it with defaults on first use.
func LoadClassSettings(db *gorm.DB) (ClassSettings, error) {
	var cfg models.ClassConfig
	err := db.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.ClassConfig{StudentsCanCreateTeams: true}
		err = db.Create(&cfg).Error
	}
	if err != nil {
		return DefaultClassSettings(), err
	}
	return ClassSettings{StudentsCanCreateTeams: cfg.StudentsCanCreateTeams}, nil
}
