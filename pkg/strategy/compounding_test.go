package strategy

import (
	"math"
	"testing"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCompounder(t *testing.T) *PremiumCompounder {
	t.Helper()
	compounder, err := NewPremiumCompounder(zap.NewNop(), DefaultParameters(), DefaultPolicy())
	require.NoError(t, err)
	return compounder
}

func TestMonthlyAllocationMonthOne(t *testing.T) {
	plan, err := newTestCompounder(t).MonthlyAllocation(1000, 1)
	require.NoError(t, err)

	assert.Equal(t, 1.0, plan.ScalingFactor)
	assert.InDelta(t, 700, plan.PutAllocation, 1e-9)
	assert.InDelta(t, 300, plan.CallAllocation, 1e-9)
	assert.InDelta(t, 4700, plan.TotalPutCapital, 1e-9)
	assert.Equal(t, 18, plan.EstimatedNewContracts)
	assert.InDelta(t, 1.175, plan.CompoundingMultiple, 1e-9)
	assert.Equal(t, 0.0, plan.ExpectedGrowthRate)
}

func TestMonthlyAllocationScalingIncreases(t *testing.T) {
	compounder := newTestCompounder(t)

	previous := 0.0
	for month := 1; month <= 24; month++ {
		plan, err := compounder.MonthlyAllocation(1000, month)
		require.NoError(t, err)
		assert.Greater(t, plan.ScalingFactor, previous)
		previous = plan.ScalingFactor
	}

	plan, err := compounder.MonthlyAllocation(1000, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.24, plan.ScalingFactor, 1e-12)
	assert.InDelta(t, 700*1.24+4000, plan.TotalPutCapital, 1e-9)
	assert.InDelta(t, 24, plan.ExpectedGrowthRate, 1e-9)
}

func TestMonthlyAllocationInvalid(t *testing.T) {
	compounder := newTestCompounder(t)

	_, err := compounder.MonthlyAllocation(1000, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = compounder.MonthlyAllocation(-5, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestProjectGrowth(t *testing.T) {
	rows, err := newTestCompounder(t).ProjectGrowth(12)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	assert.Equal(t, 1, rows[0].Month)
	assert.Equal(t, 1000.0, rows[0].MonthlyPremium)
	assert.Equal(t, 4700.0, rows[0].PutCapital)
	assert.Equal(t, 300.0, rows[0].CallBudget)
	assert.Equal(t, 0.0, rows[0].GrowthRate)

	// 1120 * 0.7 * 1.12 + 4000
	assert.Equal(t, 1120.0, rows[1].MonthlyPremium)
	assert.Equal(t, 4878.0, rows[1].PutCapital)
	assert.Equal(t, 12.0, rows[1].GrowthRate)

	for i := 1; i < len(rows); i++ {
		assert.Greater(t, rows[i].PutCapital, rows[i-1].PutCapital)
	}
}

func TestProjectGrowthInvalidMonths(t *testing.T) {
	compounder := newTestCompounder(t)

	for _, months := range []int{0, -3, constants.MaxProjectionMonths + 1, 2000000000} {
		_, err := compounder.ProjectGrowth(months)
		assert.ErrorIsf(t, err, ErrInvalidParameter, "months %d", months)
	}

	rows, err := compounder.ProjectGrowth(constants.MaxProjectionMonths)
	require.NoError(t, err)
	require.Len(t, rows, constants.MaxProjectionMonths)
	last := rows[len(rows)-1]
	assert.False(t, math.IsInf(last.MonthlyPremium, 0))
	assert.Greater(t, last.NewContracts, 0)
}

func TestMonthlyAllocationRejectsUnboundedPremium(t *testing.T) {
	compounder := newTestCompounder(t)

	_, err := compounder.MonthlyAllocation(math.Inf(1), 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = compounder.MonthlyAllocation(math.NaN(), 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	// Large enough that the contract count no longer fits.
	_, err = compounder.MonthlyAllocation(1e300, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
