package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
	"socdocs/backend/services"
	"socdocs/backend/utils"
)

// currentUser loads the authenticated user from the bearer token, or
// nil when the request is anonymous or the token is stale.
func currentUser(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) *models.User {
	userID, err := utils.ExtractUserIDFromToken(c, cfg)
	if err != nil {
		return nil
	}
	return services.GetUser(db, userID)
}

// serviceError maps domain errors onto HTTP responses. Anything outside
// the domain taxonomy is a storage fault and surfaces as a 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Not found")
	case errors.Is(err, services.ErrPermissionDenied):
		return utils.Forbidden(c, "You do not have permission to do this")
	case errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, err)
	case services.IsValidation(err):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalServerError(c, "Could not query database")
	}
}
