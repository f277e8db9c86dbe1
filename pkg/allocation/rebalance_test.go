package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dompet/models"
)

func TestPlanFirstAccountCreatesAllBucketsAtZero(t *testing.T) {
	plan, err := PlanAccountAddition(0, models.TypeKebutuhan, decimal.NewFromInt(500000))
	require.NoError(t, err)

	assert.Equal(t, -1, plan.StripOrdinal)
	require.Len(t, plan.NewAllocs, 3)
	for _, na := range plan.NewAllocs {
		assert.True(t, na.Balance.IsZero(), "first account buckets start at zero, %s got %s", na.Type, na.Balance)
	}
	assert.Equal(t, AdvisoryMessage(1), plan.Message)
}

func TestPlanSecondAccountStripsFirstAndAddsPair(t *testing.T) {
	plan, err := PlanAccountAddition(1, models.TypeTabungan, decimal.NewFromInt(50000))
	require.NoError(t, err)

	assert.Equal(t, 0, plan.StripOrdinal)
	assert.ElementsMatch(t, []models.AllocationType{models.TypeTabungan, models.TypeDarurat}, plan.StripTypes)

	require.Len(t, plan.NewAllocs, 2)
	assert.Equal(t, models.TypeTabungan, plan.NewAllocs[0].Type)
	assert.True(t, plan.NewAllocs[0].Balance.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, models.TypeDarurat, plan.NewAllocs[1].Type)
	assert.True(t, plan.NewAllocs[1].Balance.IsZero())
}

func TestPlanSecondAccountAcceptsDarurat(t *testing.T) {
	plan, err := PlanAccountAddition(1, models.TypeDarurat, decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.Equal(t, models.TypeDarurat, plan.NewAllocs[0].Type)
	assert.Equal(t, models.TypeTabungan, plan.NewAllocs[1].Type, "counterpart of the pair is created at zero")
}

func TestPlanSecondAccountRejectsKebutuhan(t *testing.T) {
	_, err := PlanAccountAddition(1, models.TypeKebutuhan, decimal.Zero)
	assert.ErrorIs(t, err, ErrPolicyViolation)
}

func TestPlanThirdAccountOnlyDarurat(t *testing.T) {
	for _, reject := range []models.AllocationType{models.TypeKebutuhan, models.TypeTabungan} {
		_, err := PlanAccountAddition(2, reject, decimal.NewFromInt(100))
		assert.ErrorIs(t, err, ErrPolicyViolation, "type %s must be rejected on the 2->3 transition", reject)
	}

	plan, err := PlanAccountAddition(2, models.TypeDarurat, decimal.NewFromInt(20000))
	require.NoError(t, err)
	assert.Equal(t, 1, plan.StripOrdinal, "the second account loses its Darurat bucket")
	assert.Equal(t, []models.AllocationType{models.TypeDarurat}, plan.StripTypes)
	require.Len(t, plan.NewAllocs, 1)
	assert.True(t, plan.NewAllocs[0].Balance.Equal(decimal.NewFromInt(20000)))
}

func TestPlanFourthAccountIsUnrestricted(t *testing.T) {
	for _, typ := range models.AllocationTypes() {
		plan, err := PlanAccountAddition(3, typ, decimal.NewFromInt(123))
		require.NoError(t, err)
		assert.Equal(t, -1, plan.StripOrdinal)
		require.Len(t, plan.NewAllocs, 1)
		assert.Equal(t, typ, plan.NewAllocs[0].Type)
	}
}

func TestPlanRejectsInvalidInput(t *testing.T) {
	_, err := PlanAccountAddition(0, models.AllocationType("Liburan"), decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = PlanAccountAddition(3, models.TypeTabungan, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdvisoryMessagePerCount(t *testing.T) {
	assert.NotEqual(t, AdvisoryMessage(1), AdvisoryMessage(2))
	assert.NotEqual(t, AdvisoryMessage(2), AdvisoryMessage(3))
	assert.Equal(t, AdvisoryMessage(3), AdvisoryMessage(7), "3+ accounts share one message")
}

func TestSwapAllocationsRoundTrip(t *testing.T) {
	a := models.AccountAllocation{ID: 1, AccountID: 10, Type: models.TypeKebutuhan, BalancePerType: decimal.NewFromInt(300000)}
	b := models.AccountAllocation{ID: 2, AccountID: 20, Type: models.TypeTabungan, BalancePerType: decimal.NewFromInt(50000)}

	SwapAllocations(&a, &b)

	assert.Equal(t, models.TypeTabungan, a.Type)
	assert.Equal(t, uint(20), a.AccountID)
	assert.True(t, a.BalancePerType.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, models.TypeKebutuhan, b.Type)
	assert.Equal(t, uint(10), b.AccountID)

	// Swapping back restores both rows exactly.
	SwapAllocations(&a, &b)
	assert.Equal(t, models.TypeKebutuhan, a.Type)
	assert.Equal(t, uint(10), a.AccountID)
	assert.True(t, a.BalancePerType.Equal(decimal.NewFromInt(300000)))
	assert.Equal(t, models.TypeTabungan, b.Type)
	assert.Equal(t, uint(20), b.AccountID)
	assert.True(t, b.BalancePerType.Equal(decimal.NewFromInt(50000)))
}
