package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naimur978/Expense-Tracker/internal/models"

	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLen = 200

	// amount is decimal(10,2)
	maxAmountIntDigits  = 8
	maxAmountFracDigits = 2

	// filter bounds only need to fit in int64 cents
	maxBoundIntDigits  = 15
	maxBoundFracDigits = 12
)

const msgRequired = "This field is required."

// FlexString accepts a JSON string or a bare JSON number, so "amount": 12.5
// and "amount": "12.50" decode the same way.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = FlexString(n)
	return nil
}

// ExpensePayload is the raw request body for expense writes. Nil fields were
// absent from the request.
type ExpensePayload struct {
	Description *string     `json:"description"`
	Amount      *FlexString `json:"amount"`
	Category    *string     `json:"category"`
	Date        *string     `json:"date"`
}

// ExpenseInput is a validated expense. Only fields present in the payload are
// set when parsed in partial mode.
type ExpenseInput struct {
	Description *string
	AmountCents *int64
	Category    *models.Category
	Date        *string
}

// Apply copies the set fields onto e.
func (in ExpenseInput) Apply(e *models.Expense) {
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.AmountCents != nil {
		e.AmountCents = *in.AmountCents
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
}

// ParseExpense validates p. With partial=false every field is required.
// All problems are reported together in a validation AppError.
func ParseExpense(p ExpensePayload, partial bool) (ExpenseInput, error) {
	var in ExpenseInput
	fields := map[string]string{}

	if p.Description == nil {
		if !partial {
			fields["description"] = msgRequired
		}
	} else if d, err := ValidateDescription(*p.Description); err != nil {
		fields["description"] = err.Error()
	} else {
		in.Description = &d
	}

	if p.Amount == nil {
		if !partial {
			fields["amount"] = msgRequired
		}
	} else if cents, err := ParseAmount(string(*p.Amount)); err != nil {
		fields["amount"] = err.Error()
	} else {
		in.AmountCents = &cents
	}

	if p.Category == nil {
		if !partial {
			fields["category"] = msgRequired
		}
	} else if c, err := ParseCategory(*p.Category); err != nil {
		fields["category"] = err.Error()
	} else {
		in.Category = &c
	}

	if p.Date == nil {
		if !partial {
			fields["date"] = msgRequired
		}
	} else if d, err := ParseDate(*p.Date); err != nil {
		fields["date"] = err.Error()
	} else {
		s := d.Format(models.DateLayout)
		in.Date = &s
	}

	if len(fields) > 0 {
		return ExpenseInput{}, NewValidationError(fields)
	}
	return in, nil
}

// ValidateDescription trims s and checks it is non-empty and at most 200 characters.
func ValidateDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("This field may not be blank.")
	}
	if utf8.RuneCountInString(s) > MaxDescriptionLen {
		return "", fmt.Errorf("Ensure this field has no more than %d characters.", MaxDescriptionLen)
	}
	return s, nil
}

// ParseAmount parses a non-negative decimal with at most two fractional digits
// and returns it in cents.
func ParseAmount(s string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, errors.New("Ensure this value is greater than or equal to 0.")
	}
	n, intDigits, fracDigits := normalize(d)
	if fracDigits > maxAmountFracDigits {
		return 0, errors.New("Ensure that there are no more than 2 decimal places.")
	}
	if intDigits > maxAmountIntDigits {
		return 0, fmt.Errorf("Ensure that there are no more than %d digits before the decimal point.", maxAmountIntDigits)
	}
	return n.Shift(2).IntPart(), nil
}

// ParseBound parses an amount filter bound into cents, rounding up when ceil
// is set and down otherwise.
func ParseBound(s string, ceil bool) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	n, intDigits, fracDigits := normalize(d)
	if intDigits > maxBoundIntDigits || fracDigits > maxBoundFracDigits {
		return 0, errors.New("A valid number is required.")
	}
	cents := n.Shift(2)
	if ceil {
		cents = cents.Ceil()
	} else {
		cents = cents.Floor()
	}
	return cents.IntPart(), nil
}

// normalize strips trailing zeros from the coefficient of d and counts the
// digits before and after the decimal point. It only looks at the coefficient
// string, so "1e1000000000" costs no more than "1". The returned decimal is
// only meaningful when the counts are small.
func normalize(d decimal.Decimal) (n decimal.Decimal, intDigits, fracDigits int64) {
	coef := new(big.Int).Abs(d.Coefficient())
	if coef.Sign() == 0 {
		return decimal.Zero, 0, 0
	}
	all := coef.String()
	digits := strings.TrimRight(all, "0")
	exp := int64(d.Exponent()) + int64(len(all)-len(digits))

	intDigits = max(int64(len(digits))+exp, 0)
	fracDigits = max(-exp, 0)
	if intDigits > maxBoundIntDigits || fracDigits > maxBoundFracDigits {
		return decimal.Zero, intDigits, fracDigits
	}

	c, _ := new(big.Int).SetString(digits, 10)
	if d.IsNegative() {
		c.Neg(c)
	}
	return decimal.NewFromBigInt(c, int32(exp)), intDigits, fracDigits
}

// ParseDecimal parses s as a decimal number. Used for both payloads and filters.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("A valid number is required.")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("A valid number is required.")
	}
	return d, nil
}

// ParseCategory checks s against the fixed category list.
func ParseCategory(s string) (models.Category, error) {
	c := models.Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%q is not a valid choice.", s)
	}
	return c, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return t, nil
}
