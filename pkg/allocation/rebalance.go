package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"dompet/models"
)

// NewAllocation is one bucket to create on the account being added.
type NewAllocation struct {
	Type    models.AllocationType
	Balance decimal.Decimal
}

// AdditionPlan describes how buckets are redistributed when a user adds a
// bank account. StripOrdinal indexes into the user's accounts ordered by
// creation; -1 means no existing account loses buckets.
type AdditionPlan struct {
	StripOrdinal int
	StripTypes   []models.AllocationType
	NewAllocs    []NewAllocation
	Message      string
}

// PlanAccountAddition decides the bucket redistribution for an account
// creation, given how many accounts the user currently has.
//
// Transitions:
//
//	0 -> 1: all three buckets are created at zero on the new account; the
//	        requested balance only applies from the second account onward.
//	1 -> 2: only Tabungan or Darurat may be requested. The first account is
//	        stripped of Tabungan and Darurat; the new account receives the
//	        requested bucket at the requested balance plus the other of the
//	        pair at zero.
//	2 -> 3: only Darurat may be requested. The second account loses its
//	        Darurat bucket; the new account holds Darurat at the requested
//	        balance.
//	3+    : any bucket may be requested, nothing is stripped.
//
// Pure function; the caller applies the plan inside its transaction.
func PlanAccountAddition(existing int, reqType models.AllocationType, reqBalance decimal.Decimal) (AdditionPlan, error) {
	if !reqType.Valid() {
		return AdditionPlan{}, fmt.Errorf("%w: unknown allocation type %q", ErrValidation, reqType)
	}
	if reqBalance.IsNegative() {
		return AdditionPlan{}, fmt.Errorf("%w: balance_per_type must be >= 0", ErrValidation)
	}

	plan := AdditionPlan{StripOrdinal: -1, Message: AdvisoryMessage(existing + 1)}

	switch {
	case existing == 0:
		for _, t := range models.AllocationTypes() {
			plan.NewAllocs = append(plan.NewAllocs, NewAllocation{Type: t, Balance: decimal.Zero})
		}
	case existing == 1:
		if reqType == models.TypeKebutuhan {
			return AdditionPlan{}, fmt.Errorf("%w: a second account must hold Tabungan or Darurat, not Kebutuhan", ErrPolicyViolation)
		}
		plan.StripOrdinal = 0
		plan.StripTypes = []models.AllocationType{models.TypeTabungan, models.TypeDarurat}
		plan.NewAllocs = []NewAllocation{
			{Type: reqType, Balance: reqBalance},
			{Type: otherOf(reqType), Balance: decimal.Zero},
		}
	case existing == 2:
		if reqType != models.TypeDarurat {
			return AdditionPlan{}, fmt.Errorf("%w: a third account must hold Darurat, got %s", ErrPolicyViolation, reqType)
		}
		plan.StripOrdinal = 1
		plan.StripTypes = []models.AllocationType{models.TypeDarurat}
		plan.NewAllocs = []NewAllocation{{Type: models.TypeDarurat, Balance: reqBalance}}
	default:
		plan.NewAllocs = []NewAllocation{{Type: reqType, Balance: reqBalance}}
	}

	return plan, nil
}

// otherOf returns the counterpart of the Tabungan/Darurat pair.
func otherOf(t models.AllocationType) models.AllocationType {
	if t == models.TypeTabungan {
		return models.TypeDarurat
	}
	return models.TypeTabungan
}

// AdvisoryMessage is the informational note returned after an account is
// created, based on the user's total account count afterwards. Never persisted.
func AdvisoryMessage(totalAccounts int) string {
	switch totalAccounts {
	case 1:
		return "Nice, your first account is connected! Adding a second account helps keep savings apart from daily spending."
	case 2:
		return "Nice, two accounts now! A third account is even better for a dedicated emergency fund."
	default:
		return "Great, your accounts are well organized!"
	}
}

// SwapAllocations exchanges type, balance and owning account between two
// allocation rows. Applying it twice restores both rows. For a single-account
// user both rows share the account, so the account exchange is a no-op there.
func SwapAllocations(a, b *models.AccountAllocation) {
	a.Type, b.Type = b.Type, a.Type
	a.BalancePerType, b.BalancePerType = b.BalancePerType, a.BalancePerType
	a.AccountID, b.AccountID = b.AccountID, a.AccountID
}
