package handler

import (
	"net/http"
	"strconv"

	"github.com/naimur978/Expense-Tracker/internal/report"
	"github.com/naimur978/Expense-Tracker/internal/service"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler serves the expense collection, its items and the summary.
type ExpenseHandler struct {
	Expenses *service.ExpenseService
}

func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses}
}

func (h *ExpenseHandler) List(c *gin.Context) {
	f, err := service.ParseExpenseFilter(c.Request.URL.Query())
	if err != nil {
		util.Fail(c, err)
		return
	}

	expenses, err := h.Expenses.List(c.Request.Context(), f)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, expenses)
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	in, ok := bindExpense(c, false)
	if !ok {
		return
	}

	e, err := h.Expenses.Create(c.Request.Context(), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusCreated, e)
}

func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	e, err := h.Expenses.Get(c.Request.Context(), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, e)
}

// Update replaces every field (PUT).
func (h *ExpenseHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch changes only the fields present in the body.
func (h *ExpenseHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *ExpenseHandler) update(c *gin.Context, partial bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindExpense(c, partial)
	if !ok {
		return
	}

	e, err := h.Expenses.Update(c.Request.Context(), id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, e)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Expenses.Delete(c.Request.Context(), id); err != nil {
		util.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary aggregates the filtered expenses by ?timeframe=weekly|monthly|yearly.
// A missing timeframe means monthly; an empty one falls through to yearly.
func (h *ExpenseHandler) Summary(c *gin.Context) {
	f, err := service.ParseExpenseFilter(c.Request.URL.Query())
	if err != nil {
		util.Fail(c, err)
		return
	}

	summary, cached, err := h.Expenses.Summary(c.Request.Context(), c.DefaultQuery("timeframe", string(report.Monthly)), f)
	if err != nil {
		util.Fail(c, err)
		return
	}
	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	util.Success(c, http.StatusOK, summary)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Fail(c, util.NewValidationError(map[string]string{"id": "A valid integer is required."}))
		return 0, false
	}
	return uint(id), true
}

func bindExpense(c *gin.Context, partial bool) (util.ExpenseInput, bool) {
	var p util.ExpensePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		util.Fail(c, util.NewValidationError(map[string]string{"body": "Malformed JSON body."}).Wrap(err))
		return util.ExpenseInput{}, false
	}

	in, err := util.ParseExpense(p, partial)
	if err != nil {
		util.Fail(c, err)
		return util.ExpenseInput{}, false
	}
	return in, true
}
