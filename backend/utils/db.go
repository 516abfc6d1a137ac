package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	// TranslateError turns driver uniqueness violations into
	// gorm.ErrDuplicatedKey, which the join-code retry depends on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Migrate creates/updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.ClassConfig{},
		&models.LoginHistory{},
		&models.Category{},
		&models.DocPage{},
		&models.Policy{},
		&models.Diagram{},
		&models.Milestone{},
		&models.Criterion{},
		&models.Submission{},
		&models.CriterionScore{},
	)
}
