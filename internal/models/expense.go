package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of Expense.Date.
const DateLayout = "2006-01-02"

// Expense is a single spending record.
// The amount is stored in cents to avoid float rounding, e.g. 12.34 = 1234.
// The date is stored as YYYY-MM-DD so range filters and ordering compare lexically.
type Expense struct {
	ID          uint     `gorm:"primaryKey"`
	Description string   `gorm:"size:200;not null"`
	AmountCents int64    `gorm:"not null;index"`
	Category    Category `gorm:"size:50;index;not null"`
	Date        string   `gorm:"size:10;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Day parses Date. The zero time is returned for malformed values.
func (e *Expense) Day() time.Time {
	t, _ := time.Parse(DateLayout, e.Date)
	return t
}

// Amount returns the amount as a two-digit decimal.
func (e *Expense) Amount() decimal.Decimal {
	return CentsToDecimal(e.AmountCents)
}

// CentsToDecimal converts cents to a decimal with two fractional digits.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders cents as "12.34".
func FormatCents(cents int64) string {
	return CentsToDecimal(cents).StringFixed(2)
}

type expenseJSON struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Category    Category  `json:"category"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalJSON renders the public representation, with the amount as a decimal string.
func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Amount:      FormatCents(e.AmountCents),
		Category:    e.Category,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	})
}
