// Package report derives time-bucketed and per-category totals from expenses.
package report

import (
	"sort"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/models"
)

// Timeframe is the bucket width of a time series.
type Timeframe string

const (
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
	Yearly  Timeframe = "yearly"
)

// ParseTimeframe maps weekly and monthly to themselves. Anything else,
// including the empty string, buckets by year.
func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case Weekly, Monthly:
		return Timeframe(s)
	default:
		return Yearly
	}
}

// Truncate returns the first day of the period containing day. Weeks start on Monday.
func (tf Timeframe) Truncate(day time.Time) time.Time {
	y, m, d := day.Date()
	switch tf {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// PeriodTotal is one point of the time series.
type PeriodTotal struct {
	Period string `json:"period"`
	Total  string `json:"total"`
	Cents  int64  `json:"-"`
}

// CategoryTotal is the sum spent in one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Total    string          `json:"total"`
	Cents    int64           `json:"-"`
}

// Summary is the result of Summarize.
type Summary struct {
	TimeSeries     []PeriodTotal   `json:"time_series"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
}

// Summarize groups expenses by period (ascending, empty periods omitted) and
// by category (descending total, ties in order of first appearance).
func Summarize(tf Timeframe, expenses []models.Expense) Summary {
	periods := make(map[time.Time]int64)
	categories := make(map[models.Category]int)
	byCategory := make([]CategoryTotal, 0)

	for i := range expenses {
		e := &expenses[i]
		day := e.Day()
		if !day.IsZero() {
			periods[tf.Truncate(day)] += e.AmountCents
		}

		idx, ok := categories[e.Category]
		if !ok {
			idx = len(byCategory)
			categories[e.Category] = idx
			byCategory = append(byCategory, CategoryTotal{Category: e.Category})
		}
		byCategory[idx].Cents += e.AmountCents
	}

	keys := make([]time.Time, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	series := make([]PeriodTotal, 0, len(keys))
	for _, k := range keys {
		series = append(series, PeriodTotal{
			Period: k.Format(models.DateLayout),
			Total:  models.FormatCents(periods[k]),
			Cents:  periods[k],
		})
	}

	sort.SliceStable(byCategory, func(i, j int) bool { return byCategory[i].Cents > byCategory[j].Cents })
	for i := range byCategory {
		byCategory[i].Total = models.FormatCents(byCategory[i].Cents)
	}

	return Summary{TimeSeries: series, CategoryTotals: byCategory}
}
