package services

import (
	"log"

	"gorm.io/gorm"

	"socdocs/backend/models"
)

// LinkDiscord attaches a Discord account ID to the user's profile. This
// is best-effort on purpose: a failure is logged and the login proceeds,
// since losing the link is preferable to blocking the user.
func LinkDiscord(db *gorm.DB, logger *log.Logger, user *models.User, discordID string) {
	if discordID == "" || user.DiscordID == discordID {
		return
	}
	if err := db.Model(user).Update("discord_id", discordID).Error; err != nil {
		logger.Printf("could not link discord account %s to user %d: %v", discordID, user.ID, err)
		return
	}
	user.DiscordID = discordID
}
