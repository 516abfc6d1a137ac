package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"socdocs/backend/models"
	"socdocs/backend/utils"
)

// ClassSettings are per-class toggles threaded into team operations as
// explicit parameters rather than read from hidden global state.
type ClassSettings struct {
	StudentsCanCreateTeams bool
}

func DefaultClassSettings() ClassSettings {
	return ClassSettings{StudentsCanCreateTeams: true}
}

const joinCodeRetries = 5

// CreateTeam creates a team owned by the actor and joins them to it.
// Join codes are random; a collision with an existing code regenerates
// and retries instead of surfacing an error to the user.
func CreateTeam(db *gorm.DB, actor *models.User, name string, settings ClassSettings) (*models.Team, error) {
	if !settings.StudentsCanCreateTeams && !actor.IsStaff() {
		return nil, validationErr("Team creation by students is currently disabled.")
	}
	if actor.TeamID != nil && !actor.IsStaff() {
		return nil, validationErr("You are already on a team.")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("Team name is required.")
	}

	var count int64
	db.Model(&models.Team{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return nil, validationErr("A team with this name already exists.")
	}

	team := models.Team{Name: name, OwnerID: &actor.ID}
	var err error
	for i := 0; i < joinCodeRetries; i++ {
		team.JoinCode = utils.GenerateJoinCode()
		err = db.Create(&team).Error
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// A duplicated key here can also mean the name lost a race;
		// re-check so we don't retry forever on the wrong column.
		db.Model(&models.Team{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			return nil, validationErr("A team with this name already exists.")
		}
	}
	if err != nil {
		return nil, ErrConflict
	}

	actor.TeamID = &team.ID
	if err := db.Model(actor).Update("team_id", team.ID).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// JoinTeam attaches the actor to an existing team by join code.
func JoinTeam(db *gorm.DB, actor *models.User, code string, settings ClassSettings) (*models.Team, error) {
	if !settings.StudentsCanCreateTeams && !actor.IsStaff() {
		return nil, validationErr("Self-joining teams is currently disabled.")
	}
	if actor.TeamID != nil && !actor.IsStaff() {
		return nil, validationErr("You are already on a team.")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, validationErr("Join code is required.")
	}

	var team models.Team
	if err := db.Where("join_code = ?", code).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationErr("Invalid join code.")
		}
		return nil, err
	}

	actor.TeamID = &team.ID
	if err := db.Model(actor).Update("team_id", team.ID).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// TeamMembers lists the users on a team ordered by username.
func TeamMembers(db *gorm.DB, teamID uint) ([]models.User, error) {
	var members []models.User
	err := db.Where("team_id = ?", teamID).Order("username").Find(&members).Error
	return members, err
}
