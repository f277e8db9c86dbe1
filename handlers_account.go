package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"dompet/models"
	"dompet/pkg/allocation"
	"dompet/pkg/badge"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// allocationErrStatus maps the engine's error taxonomy onto HTTP codes.
func allocationErrStatus(err error) int {
	switch {
	case errors.Is(err, allocation.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, allocation.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, allocation.ErrPolicyViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, allocation.ErrConsistency):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// evaluateBadges runs the badge thresholds after a successful mutation.
// Failures only log; badges never block the primary operation.
func evaluateBadges(userID uint) {
	if _, err := badge.NewEvaluator(db).Evaluate(userID); err != nil {
		log.Printf("badge evaluation failed for user %d: %v", userID, err)
	}
}

// addAccountHandler attaches a bank account and rebalances the buckets.
func addAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		BankID  uint            `json:"bank_id" binding:"required"`
		Type    string          `json:"type" binding:"required"`
		Balance decimal.Decimal `json:"balance_per_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coord := allocation.NewCoordinator(db)
	result, err := coord.AddAccount(allocation.AddAccountInput{
		UserID:  user.ID,
		BankID:  req.BankID,
		Type:    models.AllocationType(req.Type),
		Balance: req.Balance,
	})
	if err != nil {
		c.JSON(allocationErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	evaluateBadges(user.ID)
	c.JSON(http.StatusOK, result)
}

func listAccountsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	views, err := allocation.NewCoordinator(db).AccountsSnapshot(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// updateAllocationHandler reassigns an allocation's type and/or balance.
func updateAllocationHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	allocID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid allocation id"})
		return
	}
	var req struct {
		NewType    *string          `json:"new_type"`
		NewBalance *decimal.Decimal `json:"new_balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := allocation.UpdateAllocationInput{
		UserID:       user.ID,
		AllocationID: uint(allocID),
		NewBalance:   req.NewBalance,
	}
	if req.NewType != nil {
		t := models.AllocationType(*req.NewType)
		in.NewType = &t
	}
	result, err := allocation.NewCoordinator(db).UpdateAllocation(in)
	if err != nil {
		c.JSON(allocationErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	if !result.NoOp {
		evaluateBadges(user.ID)
	}
	c.JSON(http.StatusOK, result)
}

// updateAccountBalanceHandler upserts one bucket of an account.
func updateAccountBalanceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	accountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}
	var req struct {
		Type    string          `json:"type" binding:"required"`
		Balance decimal.Decimal `json:"balance_per_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := allocation.NewCoordinator(db).UpdateAccountBalance(allocation.UpdateAccountBalanceInput{
		UserID:    user.ID,
		AccountID: uint(accountID),
		Type:      models.AllocationType(req.Type),
		Balance:   req.Balance,
	})
	if err != nil {
		c.JSON(allocationErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	evaluateBadges(user.ID)
	c.JSON(http.StatusOK, result)
}

// dashboardHandler returns the accounts snapshot, bucket totals, today's
// budget tracking and the allocation history used by the balance charts.
func dashboardHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	coord := allocation.NewCoordinator(db)
	views, err := coord.AccountsSnapshot(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	total := decimal.Zero
	buckets := map[models.AllocationType]decimal.Decimal{
		models.TypeKebutuhan: decimal.Zero,
		models.TypeTabungan:  decimal.Zero,
		models.TypeDarurat:   decimal.Zero,
	}
	for _, v := range views {
		total = total.Add(v.Account.CurrentBalance)
		for _, a := range v.Allocations {
			buckets[a.Type] = buckets[a.Type].Add(a.BalancePerType)
		}
	}

	// Today's budget rows across accounts.
	store := allocation.NewStore(db)
	now := time.Now()
	type budgetRow struct {
		AccountID uint           `json:"account_id"`
		Budget    *models.Budget `json:"budget"`
	}
	var budgets []budgetRow
	for _, v := range views {
		b, err := store.BudgetForDay(user.ID, v.Account.ID, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		if b != nil {
			budgets = append(budgets, budgetRow{AccountID: v.Account.ID, Budget: b})
		}
	}

	// Allocation history for charts, newest first.
	var history []models.AccountAllocation
	err = db.
		Joins("JOIN accounts ON accounts.id = account_allocations.account_id").
		Where("accounts.user_id = ?", user.ID).
		Order("account_allocations.allocation_date desc, account_allocations.id desc").
		Limit(100).
		Find(&history).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":        views,
		"total_balance":   total,
		"buckets":         buckets,
		"budget_tracking": budgets,
		"history":         history,
	})
}
