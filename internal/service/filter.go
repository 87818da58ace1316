package service

import (
	"net/url"
	"strings"

	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseFilter narrows an expense listing. Zero-valued fields are inactive.
type ExpenseFilter struct {
	MinDate     string // inclusive, YYYY-MM-DD
	MaxDate     string // inclusive, YYYY-MM-DD
	Category    string // exact match
	MinCents    *int64 // inclusive
	MaxCents    *int64 // inclusive
	Description string // case-insensitive substring
}

// ParseExpenseFilter reads min_date, max_date, category, min_amount,
// max_amount and description from q. Empty parameters are ignored.
func ParseExpenseFilter(q url.Values) (ExpenseFilter, error) {
	var f ExpenseFilter
	fields := map[string]string{}

	if s := q.Get("min_date"); s != "" {
		if d, err := util.ParseDate(s); err != nil {
			fields["min_date"] = "Enter a valid date."
		} else {
			f.MinDate = d.Format(models.DateLayout)
		}
	}
	if s := q.Get("max_date"); s != "" {
		if d, err := util.ParseDate(s); err != nil {
			fields["max_date"] = "Enter a valid date."
		} else {
			f.MaxDate = d.Format(models.DateLayout)
		}
	}
	f.Category = q.Get("category")
	f.Description = q.Get("description")

	if s := q.Get("min_amount"); s != "" {
		// amount >= s  <=>  cents >= ceil(s*100)
		if cents, err := util.ParseBound(s, true); err != nil {
			fields["min_amount"] = "Enter a number."
		} else {
			f.MinCents = &cents
		}
	}
	if s := q.Get("max_amount"); s != "" {
		if cents, err := util.ParseBound(s, false); err != nil {
			fields["max_amount"] = "Enter a number."
		} else {
			f.MaxCents = &cents
		}
	}

	if len(fields) > 0 {
		return ExpenseFilter{}, util.NewValidationError(fields)
	}
	return f, nil
}

// Scope applies the filter to a gorm query.
func (f ExpenseFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.MinDate != "" {
		db = db.Where("date >= ?", f.MinDate)
	}
	if f.MaxDate != "" {
		db = db.Where("date <= ?", f.MaxDate)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.MinCents != nil {
		db = db.Where("amount_cents >= ?", *f.MinCents)
	}
	if f.MaxCents != nil {
		db = db.Where("amount_cents <= ?", *f.MaxCents)
	}
	if f.Description != "" {
		db = db.Where(`LOWER(description) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Description))+"%")
	}
	return db
}

// Key is a canonical encoding of the active filters, used for cache keys.
func (f ExpenseFilter) Key() string {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("min_date", f.MinDate)
	set("max_date", f.MaxDate)
	set("category", f.Category)
	set("description", f.Description)
	if f.MinCents != nil {
		v.Set("min_amount", decimal.New(*f.MinCents, -2).String())
	}
	if f.MaxCents != nil {
		v.Set("max_amount", decimal.New(*f.MaxCents, -2).String())
	}
	return v.Encode()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
