package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"dompet/models"
)

// OrderAccounts returns a copy of accounts sorted by creation time, ties
// broken by id. This ordering defines which account is "Bank A" in the
// two-account balance rule and must never depend on balances.
func OrderAccounts(accounts []models.Account) []models.Account {
	ordered := make([]models.Account, len(accounts))
	copy(ordered, accounts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}

// SumByType returns the balance of the given bucket within allocs, zero when
// the bucket is missing.
func SumByType(allocs []models.AccountAllocation, t models.AllocationType) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		if a.Type == t {
			total = total.Add(a.BalancePerType)
		}
	}
	return total
}

// PlainSum returns the sum of all allocation balances regardless of type.
func PlainSum(allocs []models.AccountAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.BalancePerType)
	}
	return total
}

// ComputeBalance derives an account's aggregate current balance from its own
// allocations, given all of the user's accounts ordered by OrderAccounts.
//
//   - 1 account total: Kebutuhan + Tabungan (Darurat is excluded on purpose).
//   - 2 accounts: the chronologically first account counts Kebutuhan only;
//     the second counts Tabungan + Darurat.
//   - 3+ accounts: plain sum of the account's own allocations.
//
// Missing bucket types count as zero. Pure function, no side effects.
func ComputeBalance(accountID uint, ordered []models.Account, allocs []models.AccountAllocation) decimal.Decimal {
	switch len(ordered) {
	case 0:
		return decimal.Zero
	case 1:
		return SumByType(allocs, models.TypeKebutuhan).Add(SumByType(allocs, models.TypeTabungan))
	case 2:
		if ordered[0].ID == accountID {
			return SumByType(allocs, models.TypeKebutuhan)
		}
		return SumByType(allocs, models.TypeTabungan).Add(SumByType(allocs, models.TypeDarurat))
	default:
		return PlainSum(allocs)
	}
}
