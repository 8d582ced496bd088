package strategy

import (
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// DefaultRecoveryScenarios are the recovery prices evaluated when none are given.
var DefaultRecoveryScenarios = []float64{5, 8, 12, 20}

// RecoveryProfit is the payoff of one call strike at a recovery price.
type RecoveryProfit struct {
	RecoveryPrice     float64
	ProfitPerContract float64
	TotalProfit       float64
	LeverageMultiple  float64
}

// StrikeContracts is the purchase plan for one hedge strike.
type StrikeContracts struct {
	Strike           float64
	Contracts        int
	EstimatedPremium float64
	TotalCost        float64
	Breakeven        float64
	Recovery         []RecoveryProfit
}

// TierPlan is the budget and contract plan for one hedge tier.
type TierPlan struct {
	Tier                string
	Budget              float64
	Strikes             []float64
	AllocationPerStrike float64
	LeverageLow         float64
	LeverageHigh        float64
	Probability         float64
	ExpectedValue       float64
	Contracts           []StrikeContracts
}

// HedgeLadderOptimizer spreads the call hedge budget over the tiered ladder.
type HedgeLadderOptimizer struct {
	calculator
}

// NewHedgeLadderOptimizer creates an optimizer for the given parameters and policy.
func NewHedgeLadderOptimizer(logger *zap.Logger, params ParameterSet, policy Policy) (*HedgeLadderOptimizer, error) {
	c, err := newCalculator(logger, params, policy)
	if err != nil {
		return nil, err
	}
	return &HedgeLadderOptimizer{calculator: c}, nil
}

// EstimateCallPremium is a step function of moneyness, not a pricing model.
func (h *HedgeLadderOptimizer) EstimateCallPremium(strike float64) float64 {
	moneyness := strike / h.params.CurrentPrice
	for _, band := range h.policy.CallPremiumBands {
		if moneyness <= band.MaxMoneyness {
			return band.Premium
		}
	}
	return h.policy.FarCallPremium
}

// OptimizeLadder allocates budget across the hedge tiers. A nil
// recoveryScenarios uses DefaultRecoveryScenarios.
func (h *HedgeLadderOptimizer) OptimizeLadder(budget float64, recoveryScenarios []float64) ([]TierPlan, error) {
	if budget < 0 {
		return nil, invalidf("hedge budget cannot be negative, got %.2f", budget)
	}
	if recoveryScenarios == nil {
		recoveryScenarios = DefaultRecoveryScenarios
	}

	plans := make([]TierPlan, 0, len(h.policy.HedgeTiers))
	for _, tier := range h.policy.HedgeTiers {
		tierBudget := budget * tier.Share
		perStrike := tierBudget / float64(len(tier.StrikeMultipliers))

		plan := TierPlan{
			Tier:                tier.Name,
			Budget:              tierBudget,
			AllocationPerStrike: perStrike,
			LeverageLow:         tier.LeverageLow,
			LeverageHigh:        tier.LeverageHigh,
			Probability:         tier.Probability,
			ExpectedValue:       tierBudget * tier.Probability * mathutil.Mean([]float64{tier.LeverageLow, tier.LeverageHigh}),
		}

		for _, multiplier := range tier.StrikeMultipliers {
			strike := h.params.CurrentPrice * multiplier
			plan.Strikes = append(plan.Strikes, strike)
			plan.Contracts = append(plan.Contracts, h.strikeContracts(strike, perStrike, recoveryScenarios))
		}
		plans = append(plans, plan)
	}

	h.logger.Debug("hedge ladder optimized",
		zap.String("op", "strategy.OptimizeLadder"),
		zap.Float64("budget", budget),
		zap.Int("tiers", len(plans)),
	)
	return plans, nil
}

func (h *HedgeLadderOptimizer) strikeContracts(strike, allocation float64, recoveryScenarios []float64) StrikeContracts {
	premium := h.EstimateCallPremium(strike)
	contractCost := premium * constants.SharesPerContract
	contracts := int(math.Floor(allocation / contractCost))

	sc := StrikeContracts{
		Strike:           strike,
		Contracts:        contracts,
		EstimatedPremium: premium,
		TotalCost:        float64(contracts) * contractCost,
		Breakeven:        strike + premium,
	}
	for _, recovery := range recoveryScenarios {
		if recovery <= sc.Breakeven {
			continue
		}
		profit := (recovery-strike)*constants.SharesPerContract - contractCost
		sc.Recovery = append(sc.Recovery, RecoveryProfit{
			RecoveryPrice:     recovery,
			ProfitPerContract: profit,
			TotalProfit:       profit * float64(contracts),
			LeverageMultiple:  profit / contractCost,
		})
	}
	return sc
}
