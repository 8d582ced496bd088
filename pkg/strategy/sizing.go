package strategy

import (
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// PositionSizing is the Kelly sizing result for one portfolio value.
type PositionSizing struct {
	KellyFraction float64
	AdjustedKelly float64
	PositionSize  float64
	MaxContracts  int
	SafetyBuffer  float64
}

// StrikePlan is the capital assigned to one rung of the put ladder.
type StrikePlan struct {
	Strike                float64
	Weight                float64
	CapitalAllocation     float64
	AssignmentProbability float64
	EstimatedContracts    int
	ExpectedShares        float64
	EffectiveCost         float64
}

// PositionSizer computes Kelly position sizes and strike allocations.
type PositionSizer struct {
	calculator
}

// NewPositionSizer creates a sizer for the given parameters and policy.
func NewPositionSizer(logger *zap.Logger, params ParameterSet, policy Policy) (*PositionSizer, error) {
	c, err := newCalculator(logger, params, policy)
	if err != nil {
		return nil, err
	}
	return &PositionSizer{calculator: c}, nil
}

// SizePosition applies the Kelly criterion scaled by the IV level and the
// personal safety factor. The result is linear in portfolioValue.
func (ps *PositionSizer) SizePosition(portfolioValue, edge float64) (PositionSizing, error) {
	if portfolioValue < 0 {
		return PositionSizing{}, invalidf("portfolio value cannot be negative, got %.2f", portfolioValue)
	}

	vol := ps.params.Volatility()
	kelly := edge / (vol * vol)
	adjusted := kelly * ps.params.SafetyFactor
	size := portfolioValue * adjusted
	maxContracts, err := contractCount(size, ps.policy.Compounding.ContractValue, "position")
	if err != nil {
		return PositionSizing{}, err
	}

	sizing := PositionSizing{
		KellyFraction: kelly,
		AdjustedKelly: adjusted,
		PositionSize:  size,
		MaxContracts:  maxContracts,
		SafetyBuffer:  kelly - adjusted,
	}

	ps.logger.Debug("optimal position size calculated",
		zap.String("op", "strategy.SizePosition"),
		zap.Float64("portfolio_value", portfolioValue),
		zap.Float64("position_size", size),
		zap.Int("max_contracts", sizing.MaxContracts),
	)
	return sizing, nil
}

// AssignmentProbability estimates the chance a put written at strike is
// assigned when the underlying trades at price with daysToExpiry remaining.
func (ps *PositionSizer) AssignmentProbability(strike, price float64, daysToExpiry int) (float64, error) {
	if strike <= 0 {
		return 0, invalidf("strike must be positive, got %.4f", strike)
	}
	if price <= 0 {
		return 0, invalidf("price must be positive, got %.4f", price)
	}

	m := ps.policy.Assignment
	if strike <= price {
		itm := (price - strike) / price * m.ITMSlope
		vol := float64(ps.params.IVLevel) / m.IVDivisor * m.IVWeight
		return math.Min(m.ITMCap, m.ITMBase+itm+vol), nil
	}

	timeFactor := math.Max(m.TimeDecayFloor, float64(daysToExpiry)/constants.DaysPerMonth)
	otm := math.Pow(price/strike, 2) * timeFactor * m.OTMWeight
	return mathutil.Clamp(m.OTMBase+otm, m.OTMFloor, m.OTMCap), nil
}

// AssignmentProbabilityAt uses the current price and the default tenor.
func (ps *PositionSizer) AssignmentProbabilityAt(strike float64) (float64, error) {
	return ps.AssignmentProbability(strike, ps.params.CurrentPrice, constants.DefaultDaysToExpiry)
}

// AllocateStrikes spreads capital over the put strike ladder, lowest strike
// first.
func (ps *PositionSizer) AllocateStrikes(capital float64) ([]StrikePlan, error) {
	if capital < 0 {
		return nil, invalidf("capital cannot be negative, got %.2f", capital)
	}

	comp := ps.policy.Compounding
	var plans []StrikePlan
	for _, rung := range ps.policy.sortedLadder() {
		strike := ps.params.CurrentPrice * rung.Multiplier
		allocated := capital * rung.Weight

		prob, err := ps.AssignmentProbabilityAt(strike)
		if err != nil {
			return nil, err
		}

		collateral := strike * constants.SharesPerContract * comp.CollateralFraction
		contracts, err := contractCount(allocated, collateral, "strike")
		if err != nil {
			return nil, err
		}

		plans = append(plans, StrikePlan{
			Strike:                strike,
			Weight:                rung.Weight,
			CapitalAllocation:     allocated,
			AssignmentProbability: prob,
			EstimatedContracts:    contracts,
			ExpectedShares:        float64(contracts*constants.SharesPerContract) * prob,
			EffectiveCost:         strike - strike*comp.PremiumCapture,
		})
	}
	return plans, nil
}
