package badge

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecideNoActivity(t *testing.T) {
	assert.Empty(t, Decide(Stats{}))
}

func TestDecideFirstAccount(t *testing.T) {
	earned := Decide(Stats{AccountCount: 1})
	assert.Equal(t, []string{CodeFirstAccount}, earned)
}

func TestDecideThreeAccounts(t *testing.T) {
	earned := Decide(Stats{AccountCount: 3})
	assert.Contains(t, earned, CodeFirstAccount)
	assert.Contains(t, earned, CodeThreeAccounts)
}

func TestDecideSaverThreshold(t *testing.T) {
	under := Decide(Stats{AccountCount: 1, TabunganBalance: decimal.NewFromInt(999999)})
	assert.NotContains(t, under, CodeSaver)

	exact := Decide(Stats{AccountCount: 1, TabunganBalance: decimal.NewFromInt(1000000)})
	assert.Contains(t, exact, CodeSaver)
}

func TestDecideExpenseStreaks(t *testing.T) {
	assert.NotContains(t, Decide(Stats{ExpenseDays: 6}), CodeStreak7)
	assert.Contains(t, Decide(Stats{ExpenseDays: 7}), CodeStreak7)

	month := Decide(Stats{ExpenseDays: 30})
	assert.Contains(t, month, CodeStreak7)
	assert.Contains(t, month, CodeStreak30)
}
