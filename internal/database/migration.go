package database

import (
	"fmt"

	"github.com/naimur978/Expense-Tracker/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the users and expenses tables.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range []any{&models.User{}, &models.Expense{}} {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto migrate %T: %w", m, err)
		}
	}
	return nil
}
