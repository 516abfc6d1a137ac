package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
	"socdocs/backend/services"
)

type TeamsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewTeamsController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *TeamsController {
	return &TeamsController{DB: db, Cfg: cfg, Logger: logger}
}

// GetProfile godoc
// @Summary Get profile and team info
// @Tags accounts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /profile [get]
func (tc *TeamsController) GetProfile(c *fiber.Ctx) error {
	user := currentUser(c, tc.DB, tc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	result := fiber.Map{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"role_in_soc":  user.RoleInSOC,
		"is_staff":     user.IsStaff(),
		"team":         nil,
	}

	if team := services.TeamOf(tc.DB, user); team != nil {
		members, err := services.TeamMembers(tc.DB, team.ID)
		if err != nil {
			return serviceError(c, err)
		}
		names := make([]fiber.Map, 0, len(members))
		for _, m := range members {
			names = append(names, fiber.Map{
				"id":           m.ID,
				"username":     m.Username,
				"display_name": m.DisplayName,
				"role_in_soc":  m.RoleInSOC,
			})
		}
		result["team"] = fiber.Map{
			"id":        team.ID,
			"name":      team.Name,
			"join_code": team.JoinCode,
			"members":   names,
		}
	}

	return c.JSON(result)
}

// UpdateProfile godoc
// @Summary Update display name and SOC role
// @Tags accounts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /profile [put]
func (tc *TeamsController) UpdateProfile(c *fiber.Ctx) error {
	user := currentUser(c, tc.DB, tc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type ProfileInput struct {
		DisplayName string `json:"display_name"`
		RoleInSOC   string `json:"role_in_soc"`
	}
	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	updates := map[string]interface{}{
		"display_name": input.DisplayName,
		"role_in_soc":  input.RoleInSOC,
	}
	if err := tc.DB.Model(user).Updates(updates).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Profile updated"})
}

// CreateTeam godoc
// @Summary Create a team and join it
// @Tags accounts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teams [post]
func (tc *TeamsController) CreateTeam(c *fiber.Ctx) error {
	user := currentUser(c, tc.DB, tc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type TeamInput struct {
		Name string `json:"name"`
	}
	var input TeamInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	settings, err := services.LoadClassSettings(tc.DB)
	if err != nil {
		return serviceError(c, err)
	}

	team, err := services.CreateTeam(tc.DB, user, input.Name, settings)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Team created. Share the join code with your teammates.",
		"team": fiber.Map{
			"id":        team.ID,
			"name":      team.Name,
			"join_code": team.JoinCode,
		},
	})
}

// JoinTeam godoc
// @Summary Join an existing team by join code
// @Tags accounts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teams/join [post]
func (tc *TeamsController) JoinTeam(c *fiber.Ctx) error {
	user := currentUser(c, tc.DB, tc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type JoinInput struct {
		JoinCode string `json:"join_code"`
	}
	var input JoinInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	settings, err := services.LoadClassSettings(tc.DB)
	if err != nil {
		return serviceError(c, err)
	}

	team, err := services.JoinTeam(tc.DB, user, input.JoinCode, settings)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Joined team",
		"team":    fiber.Map{"id": team.ID, "name": team.Name},
	})
}

// UpdateClassConfig godoc
// @Summary Staff: toggle whether students can self-manage teams
// @Tags accounts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/class-config [put]
func (tc *TeamsController) UpdateClassConfig(c *fiber.Ctx) error {
	type ConfigInput struct {
		StudentsCanCreateTeams bool `json:"students_can_create_teams"`
	}
	var input ConfigInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if _, err := services.LoadClassSettings(tc.DB); err != nil {
		return serviceError(c, err)
	}
	var cfg models.ClassConfig
	if err := tc.DB.First(&cfg).Error; err != nil {
		return serviceError(c, err)
	}
	if err := tc.DB.Model(&cfg).Update("students_can_create_teams", input.StudentsCanCreateTeams).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Class configuration updated",
		"config":  fiber.Map{"students_can_create_teams": input.StudentsCanCreateTeams},
	})
}
