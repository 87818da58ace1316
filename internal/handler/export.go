package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/models"
	"github.com/naimur978/Expense-Tracker/internal/service"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"ID", "Date", "Description", "Category", "Amount"}

const xlsxSheet = "Expenses"

// exportRows loads the filtered listing for an export; it writes the error
// response itself and returns ok=false on failure.
func (h *ExpenseHandler) exportRows(c *gin.Context) ([]models.Expense, bool) {
	f, err := service.ParseExpenseFilter(c.Request.URL.Query())
	if err != nil {
		util.Fail(c, err)
		return nil, false
	}
	expenses, err := h.Expenses.List(c.Request.Context(), f)
	if err != nil {
		util.Fail(c, err)
		return nil, false
	}
	return expenses, true
}

func attachment(c *gin.Context, contentType, ext string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.%s\"",
		time.Now().Format("20060102"), ext))
}

// ExportCSV streams the filtered expenses as CSV.
func (h *ExpenseHandler) ExportCSV(c *gin.Context) {
	expenses, ok := h.exportRows(c)
	if !ok {
		return
	}

	attachment(c, "text/csv; charset=utf-8", "csv")
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	for i := range expenses {
		e := &expenses[i]
		_ = w.Write([]string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Date,
			e.Description,
			string(e.Category),
			models.FormatCents(e.AmountCents),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logRequestError(c, "write csv export", err)
	}
}

// ExportXLSX writes the filtered expenses to a single-sheet workbook.
func (h *ExpenseHandler) ExportXLSX(c *gin.Context) {
	expenses, ok := h.exportRows(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(expenses)
	if err != nil {
		util.Fail(c, err)
		return
	}
	defer f.Close()

	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logRequestError(c, "write xlsx export", err)
	}
}

func buildWorkbook(expenses []models.Expense) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(exportHeaders))
	for i, s := range exportHeaders {
		header[i] = s
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}

	for i := range expenses {
		e := &expenses[i]
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{e.ID, e.Date, e.Description, string(e.Category), e.Amount().InexactFloat64()}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		amountCell, _ := excelize.CoordinatesToCellName(5, row)
		if err := f.SetCellStyle(xlsxSheet, amountCell, amountCell, money); err != nil {
			return nil, fmt.Errorf("style row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(xlsxSheet, "A", "A", 8)
	_ = f.SetColWidth(xlsxSheet, "B", "B", 12)
	_ = f.SetColWidth(xlsxSheet, "C", "C", 40)
	_ = f.SetColWidth(xlsxSheet, "D", "D", 18)
	_ = f.SetColWidth(xlsxSheet, "E", "E", 12)
	return f, nil
}
