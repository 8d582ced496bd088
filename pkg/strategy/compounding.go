package strategy

import (
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// AllocationPlan is the monthly split of collected premium.
type AllocationPlan struct {
	Month                 int
	PremiumCollected      float64
	PutAllocation         float64
	CallAllocation        float64
	ScalingFactor         float64
	TotalPutCapital       float64
	EstimatedNewContracts int
	CompoundingMultiple   float64
	ExpectedGrowthRate    float64 // percent
}

// ProjectionRow is one month of the premium growth projection, rounded for
// display.
type ProjectionRow struct {
	Month               int
	MonthlyPremium      float64
	PutCapital          float64
	CallBudget          float64
	NewContracts        int
	CompoundingMultiple float64
	GrowthRate          float64
}

// PremiumCompounder splits monthly premium into put reinvestment and call
// hedge budgets.
type PremiumCompounder struct {
	calculator
}

// NewPremiumCompounder creates a compounder for the given parameters and policy.
func NewPremiumCompounder(logger *zap.Logger, params ParameterSet, policy Policy) (*PremiumCompounder, error) {
	c, err := newCalculator(logger, params, policy)
	if err != nil {
		return nil, err
	}
	return &PremiumCompounder{calculator: c}, nil
}

// ScalingFactor returns the progressive reinvestment multiplier for a month;
// exactly 1 in month one.
func (pc *PremiumCompounder) ScalingFactor(month int) float64 {
	return 1 + float64(month-1)*pc.policy.Compounding.MonthlyAcceleration
}

// MonthlyAllocation computes the allocation for premium collected in month.
// It has no side effects; callers record the result in their Ledger.
func (pc *PremiumCompounder) MonthlyAllocation(premium float64, month int) (AllocationPlan, error) {
	if month < 1 {
		return AllocationPlan{}, invalidf("month number must be at least 1, got %d", month)
	}
	if premium < 0 || math.IsInf(premium, 1) || math.IsNaN(premium) {
		return AllocationPlan{}, invalidf("premium must be finite and non-negative, got %.2f", premium)
	}

	scaling := pc.ScalingFactor(month)
	put := premium * pc.params.PutAllocation
	call := premium * pc.params.CallAllocation
	totalPut := put*scaling + pc.params.MonthlyCapital
	newContracts, err := contractCount(totalPut, pc.policy.Compounding.ContractValue, "monthly put")
	if err != nil {
		return AllocationPlan{}, err
	}

	plan := AllocationPlan{
		Month:                 month,
		PremiumCollected:      premium,
		PutAllocation:         put,
		CallAllocation:        call,
		ScalingFactor:         scaling,
		TotalPutCapital:       totalPut,
		EstimatedNewContracts: newContracts,
		CompoundingMultiple:   totalPut / pc.params.MonthlyCapital,
		ExpectedGrowthRate:    (scaling - 1) * constants.PercentageMultiplier,
	}

	pc.logger.Debug("monthly allocation calculated",
		zap.String("op", "strategy.MonthlyAllocation"),
		zap.Int("month", month),
		zap.Float64("premium", premium),
		zap.Float64("total_put_capital", totalPut),
		zap.Int("new_contracts", plan.EstimatedNewContracts),
	)
	return plan, nil
}

// ProjectGrowth projects the allocation over months assuming the seed premium
// grows by the projection growth rate each month.
func (pc *PremiumCompounder) ProjectGrowth(months int) ([]ProjectionRow, error) {
	if err := checkHorizon(months, "projection months"); err != nil {
		return nil, err
	}

	comp := pc.policy.Compounding
	rows := make([]ProjectionRow, 0, months)
	for month := 1; month <= months; month++ {
		premium := comp.ProjectionSeed * math.Pow(1+comp.ProjectionGrowth, float64(month-1))
		alloc, err := pc.MonthlyAllocation(premium, month)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ProjectionRow{
			Month:               month,
			MonthlyPremium:      math.Round(premium),
			PutCapital:          math.Round(alloc.TotalPutCapital),
			CallBudget:          math.Round(alloc.CallAllocation),
			NewContracts:        alloc.EstimatedNewContracts,
			CompoundingMultiple: mathutil.RoundTo(alloc.CompoundingMultiple, 2),
			GrowthRate:          mathutil.RoundTo(alloc.ExpectedGrowthRate, 1),
		})
	}
	return rows, nil
}
