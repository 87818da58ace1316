package util

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/naimur978/Expense-Tracker/internal/models"
)

func TestParseAmount_Valid(t *testing.T) {
	testCases := map[string]int64{
		"0":            0,
		"0.01":         1,
		"1":            100,
		"100.5":        10050,
		"50.00":        5000,
		"99999999.99":  9999999999,
		" 12.30 ":      1230,
		"1.000":        100,
		"1e2":          10000,
		"0e1000000000": 0,
	}

	for in, want := range testCases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error = %v, want nil", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAmount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"abc",
		"-0.01",
		"-50.00",
		"1.234",
		"100000000.00",
		"12,34",
		"184467440737095516.18",
		"1e100000",
		"1e1000000000",
		"1e-1000000000",
		"5e-3",
	}

	for _, in := range testCases {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) error = nil, want error", in)
		}
	}
}

func TestParseBound(t *testing.T) {
	testCases := []struct {
		in   string
		ceil bool
		want int64
	}{
		{"10.005", true, 1001},
		{"10.005", false, 1000},
		{"99.999", false, 9999},
		{"5", true, 500},
		{"1e3", false, 100000},
		{"-2.5", true, -250},
	}

	for _, tc := range testCases {
		got, err := ParseBound(tc.in, tc.ceil)
		if err != nil {
			t.Errorf("ParseBound(%q, %v) error = %v, want nil", tc.in, tc.ceil, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseBound(%q, %v) = %d, want %d", tc.in, tc.ceil, got, tc.want)
		}
	}

	for _, in := range []string{"", "lots", "184467440737095516.18", "1e1000000000", "1e-1000000000"} {
		if _, err := ParseBound(in, true); err == nil {
			t.Errorf("ParseBound(%q) error = nil, want error", in)
		}
	}
}

func TestParseDate(t *testing.T) {
	valid := []string{"2024-01-01", "2024-12-31", "2024-02-29"}
	for _, d := range valid {
		if _, err := ParseDate(d); err != nil {
			t.Errorf("ParseDate(%q) error = %v, want nil", d, err)
		}
	}

	invalid := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
		"2023-02-29",
	}
	for _, d := range invalid {
		if _, err := ParseDate(d); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", d)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("Food & Dining"); err != nil || c != models.CategoryFood {
		t.Errorf("ParseCategory(Food & Dining) = %q, %v", c, err)
	}
	for _, bad := range []string{"", "Invalid Category", "food & dining"} {
		if _, err := ParseCategory(bad); err == nil {
			t.Errorf("ParseCategory(%q) error = nil, want error", bad)
		}
	}
}

func TestValidateDescription(t *testing.T) {
	if d, err := ValidateDescription("  Lunch "); err != nil || d != "Lunch" {
		t.Errorf("ValidateDescription() = %q, %v", d, err)
	}
	if _, err := ValidateDescription("   "); err == nil {
		t.Error("blank description should be rejected")
	}
	if _, err := ValidateDescription(strings.Repeat("é", 200)); err != nil {
		t.Errorf("200 characters should be accepted: %v", err)
	}
	if _, err := ValidateDescription(strings.Repeat("a", 201)); err == nil {
		t.Error("201 characters should be rejected")
	}
}

func decodePayload(t *testing.T, body string) ExpensePayload {
	t.Helper()
	var p ExpensePayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
	return p
}

func TestParseExpense_Full(t *testing.T) {
	p := decodePayload(t, `{"description":"Test API Expense","amount":"100.00","category":"Shopping","date":"2024-01-01"}`)
	in, err := ParseExpense(p, false)
	if err != nil {
		t.Fatalf("ParseExpense error = %v", err)
	}

	var e models.Expense
	in.Apply(&e)
	if e.Description != "Test API Expense" || e.AmountCents != 10000 || e.Category != models.CategoryShopping || e.Date != "2024-01-01" {
		t.Errorf("unexpected expense %+v", e)
	}
}

func TestParseExpense_NumericAmount(t *testing.T) {
	p := decodePayload(t, `{"description":"x","amount":12.5,"category":"Other","date":"2024-01-01"}`)
	in, err := ParseExpense(p, false)
	if err != nil {
		t.Fatalf("ParseExpense error = %v", err)
	}
	if *in.AmountCents != 1250 {
		t.Errorf("amount = %d, want 1250", *in.AmountCents)
	}
}

func TestParseExpense_FieldErrors(t *testing.T) {
	p := decodePayload(t, `{"description":"","amount":"-50.00","category":"Invalid Category","date":"2024-01-01"}`)
	_, err := ParseExpense(p, false)
	ae, ok := AsAppError(err)
	if !ok {
		t.Fatalf("ParseExpense error = %v, want AppError", err)
	}
	if ae.Kind != KindValidation {
		t.Errorf("kind = %v, want validation", ae.Kind)
	}
	for _, f := range []string{"description", "amount", "category"} {
		if _, ok := ae.Fields[f]; !ok {
			t.Errorf("missing field error for %s in %v", f, ae.Fields)
		}
	}
	if _, ok := ae.Fields["date"]; ok {
		t.Error("date was valid and should not be reported")
	}
}

func TestParseExpense_Partial(t *testing.T) {
	p := decodePayload(t, `{"amount":"9.99"}`)

	if _, err := ParseExpense(p, false); err == nil {
		t.Error("full parse of a partial payload should fail")
	}

	in, err := ParseExpense(p, true)
	if err != nil {
		t.Fatalf("partial ParseExpense error = %v", err)
	}
	e := models.Expense{Description: "keep", AmountCents: 100, Category: models.CategoryOther, Date: "2024-01-01"}
	in.Apply(&e)
	if e.AmountCents != 999 || e.Description != "keep" || e.Date != "2024-01-01" {
		t.Errorf("unexpected expense after partial apply %+v", e)
	}
}
