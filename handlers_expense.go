package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"dompet/models"
	"dompet/pkg/allocation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// createExpenseHandler records a spend against an account and reduces today's
// remaining daily budget. The allocation tables are not touched; expenses
// only feed the carry-forward query and the remaining-allowance figure.
func createExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		AccountID uint            `json:"account_id" binding:"required"`
		Name      string          `json:"name" binding:"required"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		Date      string          `json:"date"` // optional ISO8601
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be > 0"})
		return
	}
	var acct models.Account
	if err := db.First(&acct, req.AccountID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account not found"})
		return
	}
	if acct.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	exp := models.Expense{
		UserID:    user.ID,
		AccountID: req.AccountID,
		Name:      req.Name,
		Category:  req.Category,
		Amount:    req.Amount,
		Date:      time.Now(),
	}
	if req.Date != "" {
		if t, err := time.Parse(time.RFC3339, req.Date); err == nil {
			exp.Date = t
		}
	}
	if err := db.Create(&exp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	// Reduce today's remaining allowance when a budget row exists for the day.
	// Budget-tracking failures only log; the expense row is already committed.
	payload := gin.H{"id": exp.ID}
	store := allocation.NewStore(db)
	b, err := store.BudgetForDay(user.ID, req.AccountID, exp.Date)
	switch {
	case err != nil:
		log.Printf("daily budget lookup degraded for user %d account %d: %v", user.ID, req.AccountID, err)
	case b != nil:
		b.DailyBudget = b.DailyBudget.Sub(req.Amount)
		if err := store.SaveBudget(b); err != nil {
			log.Printf("daily budget decrement degraded for user %d account %d: %v", user.ID, req.AccountID, err)
		} else {
			payload["daily_budget"] = b.DailyBudget
		}
	}
	evaluateBadges(user.ID)
	c.JSON(http.StatusOK, payload)
}

func listExpensesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Expense
	q := db.Model(&models.Expense{}).Where("user_id = ?", user.ID)
	if month := c.Query("month"); month != "" { // YYYY-MM window
		if t, err := time.Parse("2006-01", month); err == nil {
			start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
			q = q.Where("date >= ? AND date < ?", start, start.AddDate(0, 1, 0))
		}
	}
	if err := q.Order("date desc, id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// createIncomeHandler credits a bucket. The balance change routes through the
// rebalancing engine so the account aggregate and daily budget stay in sync.
func createIncomeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		AccountID uint            `json:"account_id" binding:"required"`
		Name      string          `json:"name" binding:"required"`
		Type      string          `json:"type" binding:"required"`
		Amount    decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be > 0"})
		return
	}
	typ := models.AllocationType(req.Type)
	if !typ.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown allocation type"})
		return
	}

	store := allocation.NewStore(db)
	current := decimal.Zero
	if alloc, err := store.AccountAllocationByType(req.AccountID, typ); err == nil && alloc != nil {
		current = alloc.BalancePerType
	}

	result, err := allocation.NewCoordinator(db).UpdateAccountBalance(allocation.UpdateAccountBalanceInput{
		UserID:    user.ID,
		AccountID: req.AccountID,
		Type:      typ,
		Balance:   current.Add(req.Amount),
	})
	if err != nil {
		c.JSON(allocationErrStatus(err), gin.H{"error": err.Error()})
		return
	}

	inc := models.Income{
		UserID:    user.ID,
		AccountID: req.AccountID,
		Name:      req.Name,
		Type:      typ,
		Amount:    req.Amount,
		Date:      time.Now(),
	}
	if err := db.Create(&inc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	evaluateBadges(user.ID)
	c.JSON(http.StatusOK, gin.H{"id": inc.ID, "allocation_update": result.Allocation, "account_balance": result.Account, "budget_tracking": result.Budget})
}

func listIncomesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Income
	if err := db.Where("user_id = ?", user.ID).Order("date desc, id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// createMonthlyExpenseHandler registers a fixed monthly obligation and
// refreshes the daily budget, since the obligation reduces its base.
func createMonthlyExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name   string          `json:"name" binding:"required"`
		Amount decimal.Decimal `json:"amount"`
		DueDay int             `json:"due_day"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be > 0"})
		return
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		req.DueDay = 1
	}
	me := models.MonthlyExpense{UserID: user.ID, Name: req.Name, Amount: req.Amount, DueDay: req.DueDay}
	if err := db.Create(&me).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	budget := refreshBudgetForUser(user.ID)
	c.JSON(http.StatusOK, gin.H{"id": me.ID, "budget_tracking": budget})
}

func listMonthlyExpensesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.MonthlyExpense
	if err := db.Where("user_id = ?", user.ID).Order("due_day, id").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func deleteMonthlyExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var me models.MonthlyExpense
	if err := db.First(&me, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if me.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := db.Delete(&me).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	budget := refreshBudgetForUser(user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "budget_tracking": budget})
}

// refreshBudgetForUser re-runs the daily-budget recompute against the user's
// current Kebutuhan bucket. Returns nil when the user has no Kebutuhan bucket.
func refreshBudgetForUser(userID uint) *allocation.BudgetSnapshot {
	store := allocation.NewStore(db)
	keb, err := store.UserAllocationByType(userID, models.TypeKebutuhan, 0)
	if err != nil || keb == nil {
		return nil
	}
	snap := allocation.RecalcDailyBudget(db, userID, keb.AccountID, keb.BalancePerType, time.Now())
	return &snap
}
