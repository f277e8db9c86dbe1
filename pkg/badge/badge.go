package badge

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dompet/models"
)

// Badge codes. They must match the seeded badge catalog.
const (
	CodeFirstAccount  = "akun-pertama"
	CodeThreeAccounts = "tiga-akun"
	CodeSaver         = "tabungan-1jt"
	CodeStreak7       = "rajin-7-hari"
	CodeStreak30      = "rajin-30-hari"
)

// Stats are the counters the thresholds are checked against.
type Stats struct {
	AccountCount    int
	TabunganBalance decimal.Decimal
	ExpenseDays     int // distinct calendar days with at least one recorded expense
}

// Decide returns the badge codes earned by the given stats. Pure function.
func Decide(s Stats) []string {
	var earned []string
	if s.AccountCount >= 1 {
		earned = append(earned, CodeFirstAccount)
	}
	if s.AccountCount >= 3 {
		earned = append(earned, CodeThreeAccounts)
	}
	if s.TabunganBalance.GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		earned = append(earned, CodeSaver)
	}
	if s.ExpenseDays >= 7 {
		earned = append(earned, CodeStreak7)
	}
	if s.ExpenseDays >= 30 {
		earned = append(earned, CodeStreak30)
	}
	return earned
}

// Evaluator awards badges from allocation and expense totals. It is a
// read-mostly consumer and runs outside the rebalancing transaction; awarding
// is idempotent (one row per user per badge).
type Evaluator struct {
	db *gorm.DB
}

func NewEvaluator(db *gorm.DB) *Evaluator {
	return &Evaluator{db: db}
}

// Evaluate checks all thresholds for the user and persists newly earned
// badges. Returns the badges awarded by this call.
func (e *Evaluator) Evaluate(userID uint) ([]models.Badge, error) {
	stats, err := e.collect(userID)
	if err != nil {
		return nil, err
	}

	var awarded []models.Badge
	for _, code := range Decide(stats) {
		var b models.Badge
		if err := e.db.Where("code = ?", code).First(&b).Error; err != nil {
			return nil, fmt.Errorf("badge catalog missing %q: %w", code, err)
		}
		var cnt int64
		e.db.Model(&models.UserBadge{}).Where("user_id = ? AND badge_id = ?", userID, b.ID).Count(&cnt)
		if cnt > 0 {
			continue
		}
		ub := models.UserBadge{UserID: userID, BadgeID: b.ID, AwardedAt: time.Now()}
		if err := e.db.Create(&ub).Error; err != nil {
			return nil, err
		}
		awarded = append(awarded, b)
	}
	return awarded, nil
}

func (e *Evaluator) collect(userID uint) (Stats, error) {
	var stats Stats

	var accountCount int64
	if err := e.db.Model(&models.Account{}).Where("user_id = ?", userID).Count(&accountCount).Error; err != nil {
		return stats, err
	}
	stats.AccountCount = int(accountCount)

	var tabungan decimal.NullDecimal
	err := e.db.Raw(
		`SELECT COALESCE(SUM(aa.balance_per_type),0)
		 FROM account_allocations aa
		 JOIN accounts a ON a.id = aa.account_id
		 WHERE a.user_id = ? AND aa.type = ?`,
		userID, models.TypeTabungan,
	).Row().Scan(&tabungan)
	if err != nil {
		return stats, err
	}
	if tabungan.Valid {
		stats.TabunganBalance = tabungan.Decimal
	}

	var days int64
	err = e.db.Raw(
		`SELECT COUNT(DISTINCT date_trunc('day', date)) FROM expenses WHERE user_id = ?`,
		userID,
	).Row().Scan(&days)
	if err != nil {
		return stats, err
	}
	stats.ExpenseDays = int(days)

	return stats, nil
}
