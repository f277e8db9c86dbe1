package allocation

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dompet/models"
)

// BudgetSnapshot is the daily-budget figure returned alongside mutating
// operations. A zero-valued snapshot with Degraded set means the recompute
// failed; the primary mutation still succeeded and tracking is merely stale.
type BudgetSnapshot struct {
	DailyBudget        decimal.Decimal `json:"daily_budget"`
	InitialDailyBudget decimal.Decimal `json:"initial_daily_budget"`
	DailySaving        decimal.Decimal `json:"daily_saving"`
	Degraded           bool            `json:"degraded,omitempty"`
}

// DaysInMonth returns the number of calendar days of t's month (28-31).
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DailyAllowance divides the Kebutuhan balance, reduced by the fixed monthly
// obligations, across the days of the month. The base is floored at zero and
// the result is rounded half-up to whole currency units.
func DailyAllowance(kebutuhan, monthlyTotal decimal.Decimal, daysInMonth int) decimal.Decimal {
	base := kebutuhan.Sub(monthlyTotal)
	if base.IsNegative() {
		base = decimal.Zero
	}
	return base.Div(decimal.NewFromInt(int64(daysInMonth))).Round(0)
}

// CarryForward computes today's accumulated daily saving from yesterday's
// figures: previous saving plus yesterday's unspent allowance, never negative.
func CarryForward(prevSaving, prevDailyBudget, prevExpenses decimal.Decimal) decimal.Decimal {
	leftover := prevDailyBudget.Sub(prevExpenses)
	if leftover.IsNegative() {
		leftover = decimal.Zero
	}
	return prevSaving.Add(leftover)
}

// RecalcDailyBudget refreshes today's budget row for (user, account) from the
// given Kebutuhan balance. A same-day re-trigger overwrites the allowance but
// keeps the accrued daily saving; a day rollover carries yesterday's leftover
// forward. Any failure is swallowed into a zeroed degraded snapshot so the
// triggering mutation never rolls back because of budget tracking.
//
// The recompute runs in its own transaction scope. When db is already a
// transaction handle this nests as a savepoint, which matters on Postgres: a
// failed budget statement would otherwise abort the surrounding transaction
// and take the allocation mutation down with it.
func RecalcDailyBudget(db *gorm.DB, userID, accountID uint, kebutuhan decimal.Decimal, now time.Time) BudgetSnapshot {
	var snap BudgetSnapshot
	err := db.Transaction(func(tx *gorm.DB) error {
		s, err := recalcDailyBudget(NewStore(tx), userID, accountID, kebutuhan, now)
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		log.Printf("daily budget recompute degraded for user %d account %d: %v", userID, accountID, err)
		return BudgetSnapshot{
			DailyBudget:        decimal.Zero,
			InitialDailyBudget: decimal.Zero,
			DailySaving:        decimal.Zero,
			Degraded:           true,
		}
	}
	return snap
}

func recalcDailyBudget(store *Store, userID, accountID uint, kebutuhan decimal.Decimal, now time.Time) (BudgetSnapshot, error) {
	monthlyTotal, err := store.MonthlyExpenseTotal(userID)
	if err != nil {
		return BudgetSnapshot{}, err
	}
	allowance := DailyAllowance(kebutuhan, monthlyTotal, DaysInMonth(now))

	today, err := store.BudgetForDay(userID, accountID, now)
	if err != nil {
		return BudgetSnapshot{}, err
	}
	if today != nil {
		// Same-day re-trigger keeps the accrued saving.
		today.DailyBudget = allowance
		today.InitialDailyBudget = allowance
		if err := store.SaveBudget(today); err != nil {
			return BudgetSnapshot{}, err
		}
		return snapshotOf(today), nil
	}

	yesterday := now.AddDate(0, 0, -1)
	saving := decimal.Zero
	prev, err := store.BudgetForDay(userID, accountID, yesterday)
	if err != nil {
		return BudgetSnapshot{}, err
	}
	if prev != nil {
		spent, err := store.ExpenseSumForDay(userID, accountID, yesterday)
		if err != nil {
			return BudgetSnapshot{}, err
		}
		saving = CarryForward(prev.DailySaving, prev.DailyBudget, spent)
	}

	b := &models.Budget{
		UserID:             userID,
		AccountID:          accountID,
		DailyBudget:        allowance,
		InitialDailyBudget: allowance,
		DailySaving:        saving,
	}
	if err := store.CreateBudget(b); err != nil {
		return BudgetSnapshot{}, err
	}
	return snapshotOf(b), nil
}

func snapshotOf(b *models.Budget) BudgetSnapshot {
	return BudgetSnapshot{
		DailyBudget:        b.DailyBudget,
		InitialDailyBudget: b.InitialDailyBudget,
		DailySaving:        b.DailySaving,
	}
}
