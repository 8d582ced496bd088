package config

import (
	"fmt"

	"github.com/iwvelando/premium-forecast/pkg/strategy"
)

// Resolved is a scenario with its overrides applied and converted to the
// calculator types.
type Resolved struct {
	Name       string
	Parameters strategy.ParameterSet
	Policy     strategy.Policy
	Simulation Simulation
}

// ToParameterSet converts the shared parameters and validates them.
func (p Parameters) ToParameterSet() (strategy.ParameterSet, error) {
	return strategy.NewParameterSet(strategy.ParameterSet{
		Symbol:               p.Symbol,
		CurrentPrice:         p.CurrentPrice,
		MonthlyCapital:       p.MonthlyCapital,
		PutAllocation:        p.PutAllocation,
		CallAllocation:       p.CallAllocation,
		KellyFraction:        p.KellyFraction,
		SafetyFactor:         p.SafetyFactor,
		TargetAssignmentRate: p.TargetAssignmentRate,
		IVLevel:              p.IVLevel,
		MaxConcentration:     p.MaxConcentration,
		MinHedgeRatio:        p.MinHedgeRatio,
	})
}

// ToPolicy applies the configured overrides to the default policy and
// validates the result.
func (pc PolicyConfig) ToPolicy() (strategy.Policy, error) {
	policy := strategy.DefaultPolicy()

	if len(pc.StrikeLadder) > 0 {
		policy.StrikeLadder = make([]strategy.StrikeWeight, 0, len(pc.StrikeLadder))
		for _, rung := range pc.StrikeLadder {
			policy.StrikeLadder = append(policy.StrikeLadder, strategy.StrikeWeight{
				Multiplier: rung.Multiplier,
				Weight:     rung.Weight,
			})
		}
	}

	if len(pc.HedgeTiers) > 0 {
		policy.HedgeTiers = make([]strategy.HedgeTier, 0, len(pc.HedgeTiers))
		for _, tier := range pc.HedgeTiers {
			policy.HedgeTiers = append(policy.HedgeTiers, strategy.HedgeTier{
				Name:              tier.Name,
				Share:             tier.Share,
				StrikeMultipliers: append([]float64(nil), tier.StrikeMultipliers...),
				Probability:       tier.Probability,
				LeverageLow:       tier.LeverageLow,
				LeverageHigh:      tier.LeverageHigh,
			})
		}
	}

	basis, err := strategy.ParseVaRBasis(pc.VaRBasis)
	if err != nil {
		return strategy.Policy{}, err
	}
	policy.Risk.VaRBasis = basis

	if pc.MaxAssignmentRate != 0 {
		if pc.MaxAssignmentRate < 0 || pc.MaxAssignmentRate > 1 {
			return strategy.Policy{}, fmt.Errorf("%w: max assignment rate must be within [0, 1], got %.4f",
				strategy.ErrInvalidParameter, pc.MaxAssignmentRate)
		}
		policy.Risk.MaxAssignmentRate = pc.MaxAssignmentRate
	}

	if err := policy.Validate(); err != nil {
		return strategy.Policy{}, err
	}
	return policy, nil
}

// Resolve applies a scenario's overrides to the shared configuration.
func (c *Configuration) Resolve(s Scenario) (Resolved, error) {
	params := c.Parameters
	o := s.Parameters
	if o.CurrentPrice != nil {
		params.CurrentPrice = *o.CurrentPrice
	}
	if o.MonthlyCapital != nil {
		params.MonthlyCapital = *o.MonthlyCapital
	}
	if o.PutAllocation != nil {
		params.PutAllocation = *o.PutAllocation
	}
	if o.CallAllocation != nil {
		params.CallAllocation = *o.CallAllocation
	}
	if o.SafetyFactor != nil {
		params.SafetyFactor = *o.SafetyFactor
	}
	if o.IVLevel != nil {
		params.IVLevel = *o.IVLevel
	}

	sim := c.Simulation
	so := s.Simulation
	if so.SeedPremium != nil {
		sim.SeedPremium = *so.SeedPremium
	}
	if so.PremiumGrowth != nil {
		sim.PremiumGrowth = *so.PremiumGrowth
	}
	if so.StartingPortfolio != nil {
		sim.StartingPortfolio = *so.StartingPortfolio
	}
	if so.PortfolioStep != nil {
		sim.PortfolioStep = *so.PortfolioStep
	}

	ps, err := params.ToParameterSet()
	if err != nil {
		return Resolved{}, err
	}
	policy, err := c.Policy.ToPolicy()
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Name: s.Name, Parameters: ps, Policy: policy, Simulation: sim}, nil
}
