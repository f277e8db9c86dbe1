package allocation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dompet/models"
)

func acct(id uint, createdAt time.Time) models.Account {
	return models.Account{ID: id, CreatedAt: createdAt}
}

func alloc(accountID uint, t models.AllocationType, balance int64) models.AccountAllocation {
	return models.AccountAllocation{AccountID: accountID, Type: t, BalancePerType: decimal.NewFromInt(balance)}
}

func TestComputeBalanceSingleAccountExcludesDarurat(t *testing.T) {
	ordered := []models.Account{acct(1, time.Now())}
	allocs := []models.AccountAllocation{
		alloc(1, models.TypeKebutuhan, 300000),
		alloc(1, models.TypeTabungan, 150000),
		alloc(1, models.TypeDarurat, 99999),
	}

	got := ComputeBalance(1, ordered, allocs)
	assert.True(t, got.Equal(decimal.NewFromInt(450000)), "1-account balance is Kebutuhan+Tabungan, got %s", got)
}

func TestComputeBalanceTwoAccounts(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ordered := []models.Account{acct(1, base), acct(2, base.Add(time.Hour))}

	first := []models.AccountAllocation{alloc(1, models.TypeKebutuhan, 200000)}
	second := []models.AccountAllocation{
		alloc(2, models.TypeTabungan, 50000),
		alloc(2, models.TypeDarurat, 25000),
	}

	assert.True(t, ComputeBalance(1, ordered, first).Equal(decimal.NewFromInt(200000)),
		"Bank A counts Kebutuhan only")
	assert.True(t, ComputeBalance(2, ordered, second).Equal(decimal.NewFromInt(75000)),
		"Bank B counts Tabungan+Darurat")
}

func TestComputeBalanceTwoAccountsIgnoresForeignBuckets(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ordered := []models.Account{acct(1, base), acct(2, base.Add(time.Hour))}

	// A Tabungan bucket left on Bank A contributes nothing to Bank A.
	first := []models.AccountAllocation{
		alloc(1, models.TypeKebutuhan, 200000),
		alloc(1, models.TypeTabungan, 7777),
	}
	assert.True(t, ComputeBalance(1, ordered, first).Equal(decimal.NewFromInt(200000)))
}

func TestComputeBalanceThreeAccountsPlainSum(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ordered := []models.Account{acct(1, base), acct(2, base.Add(time.Hour)), acct(3, base.Add(2 * time.Hour))}

	allocs := []models.AccountAllocation{
		alloc(3, models.TypeDarurat, 20000),
		alloc(3, models.TypeKebutuhan, 1000),
	}
	assert.True(t, ComputeBalance(3, ordered, allocs).Equal(decimal.NewFromInt(21000)),
		"3+ accounts sum everything with no exclusion")
}

func TestComputeBalanceMissingTypesCountAsZero(t *testing.T) {
	ordered := []models.Account{acct(1, time.Now())}
	assert.True(t, ComputeBalance(1, ordered, nil).Equal(decimal.Zero))
}

func TestOrderAccountsTieBreaksByID(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	accounts := []models.Account{acct(9, ts), acct(2, ts), acct(5, ts.Add(-time.Minute))}

	ordered := OrderAccounts(accounts)

	assert.Equal(t, uint(5), ordered[0].ID)
	assert.Equal(t, uint(2), ordered[1].ID, "equal timestamps fall back to id order")
	assert.Equal(t, uint(9), ordered[2].ID)
	assert.Equal(t, uint(9), accounts[0].ID, "input slice is not mutated")
}
