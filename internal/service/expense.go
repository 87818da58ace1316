package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/report"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"gorm.io/gorm"
)

// ExpenseService is the expense store plus the cached summary.
type ExpenseService struct {
	DB    *gorm.DB
	Cache *report.Cache[report.Summary]
	Log   *logging.Logger
}

func NewExpenseService(db *gorm.DB, cache *report.Cache[report.Summary], log *logging.Logger) *ExpenseService {
	return &ExpenseService{
		DB:    db,
		Cache: cache,
		Log:   log.WithComponent("expense"),
	}
}

// List returns the expenses matching f, newest date first.
func (s *ExpenseService) List(ctx context.Context, f ExpenseFilter) ([]models.Expense, error) {
	expenses := make([]models.Expense, 0)
	if err := s.DB.WithContext(ctx).
		Scopes(f.Scope).
		Order("date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Get loads one expense.
func (s *ExpenseService) Get(ctx context.Context, id uint) (*models.Expense, error) {
	var e models.Expense
	if err := s.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("get expense %d: %w", id, err)
	}
	return &e, nil
}

// Create stores a fully validated expense.
func (s *ExpenseService) Create(ctx context.Context, in util.ExpenseInput) (*models.Expense, error) {
	var e models.Expense
	in.Apply(&e)
	if err := s.DB.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.Log.InfoContext(ctx, "expense created", "expense_id", e.ID, "amount_cents", e.AmountCents, "category", e.Category)
	return &e, nil
}

// Update applies the set fields of in to expense id.
func (s *ExpenseService) Update(ctx context.Context, id uint, in util.ExpenseInput) (*models.Expense, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(e)
	if err := s.DB.WithContext(ctx).Save(e).Error; err != nil {
		return nil, fmt.Errorf("update expense %d: %w", id, err)
	}

	s.Log.InfoContext(ctx, "expense updated", "expense_id", e.ID)
	return e, nil
}

// Delete removes expense id, or returns ErrNotFound.
func (s *ExpenseService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Expense{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete expense %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound
	}

	s.Log.InfoContext(ctx, "expense deleted", "expense_id", id)
	return nil
}

// Summary aggregates the expenses matching f. Results are served from the
// cache until they expire, even if expenses change meanwhile. The second
// return value reports a cache hit.
func (s *ExpenseService) Summary(ctx context.Context, timeframe string, f ExpenseFilter) (report.Summary, bool, error) {
	tf := report.ParseTimeframe(timeframe)
	key := string(tf) + "?" + f.Key()

	if s.Cache != nil {
		if cached, ok := s.Cache.Get(key); ok {
			return cached, true, nil
		}
	}

	expenses, err := s.List(ctx, f)
	if err != nil {
		return report.Summary{}, false, err
	}
	summary := report.Summarize(tf, expenses)

	if s.Cache != nil {
		s.Cache.Set(key, summary)
	}
	return summary, false, nil
}
