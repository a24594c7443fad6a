package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/models"
)

// Migrate creates or updates the tables. Order matters for foreign keys.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Contract{},
		&models.Event{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
