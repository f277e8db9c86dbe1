package main

import (
	"net/http"
	"time"

	"dompet/models"
	"dompet/pkg/advice"
	"dompet/pkg/allocation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var adviceClient = advice.NewClient()

// adviceHandler builds the user's finance summary and proxies it to the
// generative-language API for narrative advice. The call is read-only and
// retried inside the client; failure surfaces as 502 with no state change.
func adviceHandler(c *gin.Context) {
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

	summary := advice.Summary{AccountCount: len(views)}
	for _, v := range views {
		summary.TotalBalance = summary.TotalBalance.Add(v.Account.CurrentBalance)
		for _, a := range v.Allocations {
			switch a.Type {
			case models.TypeKebutuhan:
				summary.Kebutuhan = summary.Kebutuhan.Add(a.BalancePerType)
			case models.TypeTabungan:
				summary.Tabungan = summary.Tabungan.Add(a.BalancePerType)
			case models.TypeDarurat:
				summary.Darurat = summary.Darurat.Add(a.BalancePerType)
			}
		}
	}

	store := allocation.NewStore(db)
	if total, err := store.MonthlyExpenseTotal(user.ID); err == nil {
		summary.MonthlyExpense = total
	}
	summary.DailyBudget = decimal.Zero
	summary.DailySaving = decimal.Zero
	now := time.Now()
	for _, v := range views {
		if b, err := store.BudgetForDay(user.ID, v.Account.ID, now); err == nil && b != nil {
			summary.DailyBudget = summary.DailyBudget.Add(b.DailyBudget)
			summary.DailySaving = summary.DailySaving.Add(b.DailySaving)
		}
	}

	text, err := adviceClient.Generate(c.Request.Context(), summary)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "advice unavailable", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": text})
}
