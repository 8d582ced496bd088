package strategy

import (
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"go.uber.org/zap"
)

// Covered call tuning used after assignment.
const (
	coveredCallMarkup       = 1.25
	coveredCallPremiumSlope = 0.3
	coveredCallMinPremium   = 0.10
)

// CostBasis is the effective cost of shares acquired through a put.
type CostBasis struct {
	Strike               float64
	PremiumCollected     float64
	EffectiveCostBasis   float64
	ProfitAtCurrentPrice float64
	ProfitPct            float64
	DiscountToCurrentPct float64
}

// AssignmentReport is the management plan for a block of assigned shares.
type AssignmentReport struct {
	AssignedShares     int
	EffectiveCostBasis float64
	TotalInvestment    float64
	CurrentMarketValue float64
	UnrealizedProfit   float64
	ProfitPct          float64
	CoveredCallStrike  float64
	CoveredCallPremium float64
	MonthlyCoveredCall float64
	MonthlyYieldPct    float64
	NextActions        []string
}

// AssignmentManager values assignments and plans covered calls on them.
type AssignmentManager struct {
	calculator
}

// NewAssignmentManager creates a manager for the given parameters and policy.
func NewAssignmentManager(logger *zap.Logger, params ParameterSet, policy Policy) (*AssignmentManager, error) {
	c, err := newCalculator(logger, params, policy)
	if err != nil {
		return nil, err
	}
	return &AssignmentManager{calculator: c}, nil
}

// EffectiveCost offsets the strike by the premium collected per share.
// ProfitPct is zero when the basis is not positive.
func (am *AssignmentManager) EffectiveCost(strike, premiumPerShare float64) (CostBasis, error) {
	if strike <= 0 {
		return CostBasis{}, invalidf("strike must be positive, got %.4f", strike)
	}

	basis := strike - premiumPerShare
	price := am.params.CurrentPrice
	cb := CostBasis{
		Strike:               strike,
		PremiumCollected:     premiumPerShare,
		EffectiveCostBasis:   basis,
		ProfitAtCurrentPrice: price - basis,
		DiscountToCurrentPct: (1 - basis/price) * constants.PercentageMultiplier,
	}
	if basis > 0 {
		cb.ProfitPct = cb.ProfitAtCurrentPrice / basis * constants.PercentageMultiplier
	}
	return cb, nil
}

// Protocol builds the hold-and-write-calls plan for assigned shares.
func (am *AssignmentManager) Protocol(shares int, costBasis float64) (AssignmentReport, error) {
	if shares < 0 {
		return AssignmentReport{}, invalidf("assigned shares cannot be negative, got %d", shares)
	}

	price := am.params.CurrentPrice
	marketValue := float64(shares) * price
	investment := float64(shares) * costBasis
	unrealized := marketValue - investment

	profitRatio, err := ratio(unrealized, investment, "assignment profit")
	if err != nil {
		return AssignmentReport{}, err
	}

	ccStrike := costBasis * coveredCallMarkup
	ccPremium := math.Max(coveredCallMinPremium, (ccStrike-price)*coveredCallPremiumSlope)
	ccIncome := float64(shares) * ccPremium

	yield, err := ratio(ccIncome, marketValue, "covered call yield")
	if err != nil {
		return AssignmentReport{}, err
	}

	report := AssignmentReport{
		AssignedShares:     shares,
		EffectiveCostBasis: costBasis,
		TotalInvestment:    investment,
		CurrentMarketValue: marketValue,
		UnrealizedProfit:   unrealized,
		ProfitPct:          profitRatio * constants.PercentageMultiplier,
		CoveredCallStrike:  ccStrike,
		CoveredCallPremium: ccPremium,
		MonthlyCoveredCall: ccIncome,
		MonthlyYieldPct:    yield * constants.PercentageMultiplier,
		NextActions: []string{
			"Document cost basis for tax tracking",
			"Evaluate covered call opportunities",
			"Continue put selling strategy",
			"Monitor for appreciation",
		},
	}

	am.logger.Info("assignment processed",
		zap.String("op", "strategy.AssignmentProtocol"),
		zap.String("symbol", am.params.Symbol),
		zap.Int("shares", shares),
		zap.Float64("cost_basis", costBasis),
		zap.Float64("unrealized_profit", unrealized),
	)
	return report, nil
}
