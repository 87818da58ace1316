package database

import (
	"fmt"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/models"

	"gorm.io/gorm"
)

type demoExpense struct {
	description string
	cents       int64
	category    models.Category
	daysAgo     int
}

var demoExpenses = []demoExpense{
	{"Monthly Rent", 120000, models.CategoryHousing, 2},
	{"Grocery Shopping", 8550, models.CategoryFood, 1},
	{"Electric Bill", 7520, models.CategoryUtilities, 3},
	{"Movie Night", 3000, models.CategoryEntertainment, 0},
	{"Gas", 4500, models.CategoryTransport, 1},
}

// Seed replaces all expenses with a small demo data set dated relative to today.
func Seed(db *gorm.DB, today time.Time) ([]models.Expense, error) {
	var created []models.Expense
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Expense{}).Error; err != nil {
			return fmt.Errorf("clear expenses: %w", err)
		}

		created = make([]models.Expense, 0, len(demoExpenses))
		for _, d := range demoExpenses {
			created = append(created, models.Expense{
				Description: d.description,
				AmountCents: d.cents,
				Category:    d.category,
				Date:        today.AddDate(0, 0, -d.daysAgo).Format(models.DateLayout),
			})
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("insert demo expenses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
