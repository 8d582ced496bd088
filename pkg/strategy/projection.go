package strategy

import (
	"fmt"
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"go.uber.org/zap"
)

// Accumulation model constants.
const (
	accumulationBaseReturn     = 0.08
	accumulationReturnStep     = 0.01
	accumulationBaseAssignment = 0.50
	accumulationAssignmentStep = 0.05
	hedgeMultiplierCap         = 15.0
	hedgeMultiplierSlope       = 2.0
)

// DefaultAppreciationTargets are the recovery prices of AppreciationScenarios.
var DefaultAppreciationTargets = []float64{5, 8, 12, 20, 30}

var appreciationNames = []string{"Conservative", "Moderate", "Strong", "Explosive", "Extreme"}

// AccumulationInputs seeds the share accumulation projection.
type AccumulationInputs struct {
	Months            int
	StartingContracts int
	InitialPortfolio  float64
	PremiumCollected  float64
}

// AccumulationRow is one month of the share accumulation projection.
type AccumulationRow struct {
	Month               int
	MonthlyPremium      float64
	PutReinvestment     float64
	CallHedgeBudget     float64
	NewContracts        int
	TotalContracts      int
	MonthlyAssignments  int
	NewShares           int
	CumulativeShares    int
	EffectiveCost       float64
	ShareValue          float64
	TotalCostBasis      float64
	CallHedgeValue      float64
	CumulativePremium   float64
	PortfolioValue      float64
	CompoundingMultiple float64
}

// AppreciationScenario values the accumulated position at a target price.
type AppreciationScenario struct {
	Name          string
	TargetPrice   float64
	ShareValue    float64
	ShareProfit   float64
	HedgeProfit   float64
	TotalPremium  float64
	TotalReturn   float64
	PriceMultiple float64
	HedgeLeverage float64
}

// Projector runs the multi-month accumulation and appreciation projections.
type Projector struct {
	calculator
	compounder *PremiumCompounder
}

// NewProjector creates a projector for the given parameters and policy.
func NewProjector(logger *zap.Logger, params ParameterSet, policy Policy) (*Projector, error) {
	c, err := newCalculator(logger, params, policy)
	if err != nil {
		return nil, err
	}
	return &Projector{calculator: c, compounder: &PremiumCompounder{calculator: c}}, nil
}

// ProjectAccumulation projects share accumulation month by month. Premium is
// a rising share of portfolio value, new contracts are sized at the ladder's
// weighted average strike and a rising share of them is assigned.
func (p *Projector) ProjectAccumulation(in AccumulationInputs) ([]AccumulationRow, error) {
	if err := checkHorizon(in.Months, "accumulation months"); err != nil {
		return nil, err
	}
	if in.StartingContracts < 0 {
		return nil, invalidf("starting contracts cannot be negative, got %d", in.StartingContracts)
	}

	avgStrike := p.params.CurrentPrice * p.policy.WeightedStrikeMultiplier()
	contractCost := avgStrike * constants.SharesPerContract
	effectiveCost := avgStrike - avgStrike*p.policy.Compounding.PremiumCapture

	cumulativePremium := in.PremiumCollected
	contracts := in.StartingContracts
	portfolio := in.InitialPortfolio + in.PremiumCollected
	shares := 0

	rows := make([]AccumulationRow, 0, in.Months)
	for month := 1; month <= in.Months; month++ {
		premium := portfolio * (accumulationBaseReturn + float64(month-1)*accumulationReturnStep)
		alloc, err := p.compounder.MonthlyAllocation(premium, month)
		if err != nil {
			return nil, err
		}
		cumulativePremium += premium

		newContracts, err := contractCount(alloc.TotalPutCapital, contractCost, "accumulation")
		if err != nil {
			return nil, err
		}
		contracts += newContracts

		rate := math.Min(p.policy.Risk.MaxAssignmentRate, accumulationBaseAssignment+float64(month)*accumulationAssignmentStep)
		assignments := int(float64(newContracts) * rate)
		newShares := assignments * constants.SharesPerContract
		shares += newShares

		shareValue := float64(shares) * p.params.CurrentPrice
		costBasis := float64(shares) * effectiveCost

		portfolio += p.params.MonthlyCapital + alloc.CallAllocation
		hedgeValue := alloc.CallAllocation * float64(month)

		rows = append(rows, AccumulationRow{
			Month:               month,
			MonthlyPremium:      premium,
			PutReinvestment:     alloc.PutAllocation,
			CallHedgeBudget:     alloc.CallAllocation,
			NewContracts:        newContracts,
			TotalContracts:      contracts,
			MonthlyAssignments:  assignments,
			NewShares:           newShares,
			CumulativeShares:    shares,
			EffectiveCost:       effectiveCost,
			ShareValue:          shareValue,
			TotalCostBasis:      costBasis,
			CallHedgeValue:      hedgeValue,
			CumulativePremium:   cumulativePremium,
			PortfolioValue:      portfolio + shareValue - costBasis + hedgeValue,
			CompoundingMultiple: alloc.CompoundingMultiple,
		})
	}
	return rows, nil
}

// AppreciationScenarios values an accumulated position at each target price.
// A nil targets uses DefaultAppreciationTargets.
func (p *Projector) AppreciationScenarios(shares int, costBasis, totalPremium, hedgeValue float64, targets []float64) ([]AppreciationScenario, error) {
	if targets == nil {
		targets = DefaultAppreciationTargets
	}

	scenarios := make([]AppreciationScenario, 0, len(targets))
	for i, target := range targets {
		if target <= 0 {
			return nil, invalidf("target price must be positive, got %.2f", target)
		}
		name := fmt.Sprintf("Target %d", i+1)
		if i < len(appreciationNames) {
			name = appreciationNames[i]
		}

		shareValue := float64(shares) * target
		shareProfit := shareValue - float64(shares)*costBasis
		multiple := target / p.params.CurrentPrice
		leverage := math.Min(hedgeMultiplierCap, multiple*hedgeMultiplierSlope)
		hedgeProfit := hedgeValue * leverage

		scenarios = append(scenarios, AppreciationScenario{
			Name:          name,
			TargetPrice:   target,
			ShareValue:    shareValue,
			ShareProfit:   shareProfit,
			HedgeProfit:   hedgeProfit,
			TotalPremium:  totalPremium,
			TotalReturn:   shareProfit + totalPremium + hedgeProfit,
			PriceMultiple: multiple,
			HedgeLeverage: leverage,
		})
	}
	return scenarios, nil
}
