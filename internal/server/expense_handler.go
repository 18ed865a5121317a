package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/splitpot/splitpot/internal/service"
)

// ExpenseHandler exposes expense and balance endpoints.
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler creates an ExpenseHandler.
func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Add handles POST /api/v1/groups/:id/expenses.
func (h *ExpenseHandler) Add(c *gin.Context) {
	var req addExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	actor := userID(c)
	expense, _, err := h.expenses.AddExpense(c.Request.Context(), actor, service.AddExpenseInput{
		GroupID:        c.Param("id"),
		PayerID:        req.PayerID,
		Amount:         req.Amount,
		Description:    req.Description,
		Category:       req.Category,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	detail, err := h.expenses.GetExpense(c.Request.Context(), actor, expense.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toExpenseResponse(*detail))
}

// List handles GET /api/v1/groups/:id/expenses?limit=&offset=.
// Expenses are returned newest first.
func (h *ExpenseHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	details, err := h.expenses.ListExpenses(c.Request.Context(), userID(c), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]expenseResponse, len(details))
	for i, d := range details {
		resp[i] = toExpenseResponse(d)
	}
	c.JSON(http.StatusOK, gin.H{"expenses": resp})
}

// Get handles GET /api/v1/expenses/:id.
func (h *ExpenseHandler) Get(c *gin.Context) {
	detail, err := h.expenses.GetExpense(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(*detail))
}

// Update handles PUT /api/v1/expenses/:id.
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	actor := userID(c)
	expense, _, err := h.expenses.UpdateExpense(c.Request.Context(), actor, c.Param("id"), service.UpdateExpenseInput{
		Amount:         req.Amount,
		Description:    req.Description,
		Category:       req.Category,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	detail, err := h.expenses.GetExpense(c.Request.Context(), actor, expense.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(*detail))
}

// Delete handles DELETE /api/v1/expenses/:id. Creator only.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.expenses.DeleteExpense(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Balances handles GET /api/v1/groups/:id/balances.
func (h *ExpenseHandler) Balances(c *gin.Context) {
	balances, err := h.expenses.GetBalances(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]balanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = toBalanceResponse(b)
	}
	c.JSON(http.StatusOK, gin.H{"balances": resp})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
