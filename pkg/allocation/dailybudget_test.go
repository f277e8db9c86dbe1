package allocation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, DaysInMonth(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, DaysInMonth(time.Date(2028, 2, 10, 0, 0, 0, 0, time.UTC)), "leap year")
	assert.Equal(t, 30, DaysInMonth(time.Date(2026, 4, 30, 23, 59, 0, 0, time.UTC)))
}

func TestDailyAllowanceRoundsHalfUp(t *testing.T) {
	// 100000 / 31 = 3225.80... -> 3226
	got := DailyAllowance(decimal.NewFromInt(100000), decimal.Zero, 31)
	assert.True(t, got.Equal(decimal.NewFromInt(3226)), "got %s", got)

	// 45 / 30 = 1.5 -> rounds up to 2
	got = DailyAllowance(decimal.NewFromInt(45), decimal.Zero, 30)
	assert.True(t, got.Equal(decimal.NewFromInt(2)), "half rounds up, got %s", got)

	// 43 / 30 = 1.43... -> 1
	got = DailyAllowance(decimal.NewFromInt(43), decimal.Zero, 30)
	assert.True(t, got.Equal(decimal.NewFromInt(1)), "got %s", got)
}

func TestDailyAllowanceSubtractsMonthlyObligations(t *testing.T) {
	// (930000 - 300000) / 30 = 21000
	got := DailyAllowance(decimal.NewFromInt(930000), decimal.NewFromInt(300000), 30)
	assert.True(t, got.Equal(decimal.NewFromInt(21000)), "got %s", got)
}

func TestDailyAllowanceFloorsBaseAtZero(t *testing.T) {
	got := DailyAllowance(decimal.NewFromInt(100000), decimal.NewFromInt(500000), 30)
	assert.True(t, got.IsZero(), "obligations above the bucket yield a zero allowance, got %s", got)
}

func TestCarryForward(t *testing.T) {
	// Yesterday: budget 100000, saving 5000, spent 70000 -> 5000 + 30000 = 35000
	got := CarryForward(decimal.NewFromInt(5000), decimal.NewFromInt(100000), decimal.NewFromInt(70000))
	assert.True(t, got.Equal(decimal.NewFromInt(35000)), "got %s", got)
}

func TestCarryForwardNeverNegative(t *testing.T) {
	// Overspent days contribute nothing, they never eat prior savings.
	got := CarryForward(decimal.NewFromInt(5000), decimal.NewFromInt(100000), decimal.NewFromInt(130000))
	assert.True(t, got.Equal(decimal.NewFromInt(5000)), "got %s", got)
}

func TestCarryForwardNoPreviousDay(t *testing.T) {
	got := CarryForward(decimal.Zero, decimal.Zero, decimal.Zero)
	assert.True(t, got.IsZero())
}
