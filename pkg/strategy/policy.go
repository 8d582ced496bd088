package strategy

import (
	"fmt"
	"sort"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/mathutil"
)

// StrikeWeight is one rung of the put strike ladder.
type StrikeWeight struct {
	Multiplier float64 // of current price
	Weight     float64 // share of put capital
}

// HedgeTier describes one tier of the call hedge ladder.
type HedgeTier struct {
	Name              string
	Share             float64
	StrikeMultipliers []float64
	Probability       float64
	LeverageLow       float64
	LeverageHigh      float64
}

// PremiumBand maps a moneyness ceiling to an estimated call premium.
type PremiumBand struct {
	MaxMoneyness float64
	Premium      float64
}

// AssignmentModel holds the tuning constants of the assignment-probability curve.
type AssignmentModel struct {
	ITMBase        float64
	ITMSlope       float64
	IVDivisor      float64
	IVWeight       float64
	ITMCap         float64
	OTMBase        float64
	OTMWeight      float64
	OTMFloor       float64
	OTMCap         float64
	TimeDecayFloor float64
}

// CompoundingPolicy holds the constants of the monthly premium reinvestment.
type CompoundingPolicy struct {
	MonthlyAcceleration float64 // scaling added per elapsed month
	ContractValue       float64 // capital per new contract
	CollateralFraction  float64 // share of notional reserved per written put
	PremiumCapture      float64 // share of strike expected back as premium
	ProjectionSeed      float64
	ProjectionGrowth    float64
}

// VaRBasis selects which VaR percentage feeds the VaR alert.
type VaRBasis string

const (
	// VaRBasisVolatility uses value*vol*z/value, i.e. a pure volatility figure.
	VaRBasisVolatility VaRBasis = "volatility"
	// VaRBasisPosition scales VaR by the position size before dividing by
	// portfolio value.
	VaRBasisPosition VaRBasis = "position"
)

// RiskThresholds configures risk rating and alert cutoffs.
type RiskThresholds struct {
	ModerateConcentration   float64
	AggressiveConcentration float64
	AlertConcentrationPct   float64
	AlertVaR95Pct           float64
	AlertAssignmentScore    float64
	MaxAssignmentRate       float64
	DrawdownHorizonDays     float64
	VaRBasis                VaRBasis
}

// PriorityThresholds gate the advisory execution-priority strings.
type PriorityThresholds struct {
	CompoundingMultiple float64
	ConcentrationPct    float64
	NewContracts        int
}

// Policy is the full set of fixed tuning tables.
type Policy struct {
	StrikeLadder     []StrikeWeight
	HedgeTiers       []HedgeTier
	CallPremiumBands []PremiumBand
	FarCallPremium   float64
	Assignment       AssignmentModel
	Compounding      CompoundingPolicy
	Risk             RiskThresholds
	Priority         PriorityThresholds
}

// DefaultPolicy returns the tables the strategy was tuned with.
func DefaultPolicy() Policy {
	return Policy{
		StrikeLadder: []StrikeWeight{
			{Multiplier: 0.85, Weight: 0.20},
			{Multiplier: 0.95, Weight: 0.35},
			{Multiplier: 1.05, Weight: 0.25},
			{Multiplier: 1.25, Weight: 0.15},
			{Multiplier: 1.50, Weight: 0.05},
		},
		HedgeTiers: []HedgeTier{
			{Name: "near_term", Share: 0.40, StrikeMultipliers: []float64{2.0, 2.5}, Probability: 0.60, LeverageLow: 3, LeverageHigh: 8},
			{Name: "medium_term", Share: 0.35, StrikeMultipliers: []float64{3.0, 4.0}, Probability: 0.35, LeverageLow: 8, LeverageHigh: 20},
			{Name: "explosive", Share: 0.25, StrikeMultipliers: []float64{5.0, 8.0}, Probability: 0.15, LeverageLow: 20, LeverageHigh: 50},
		},
		CallPremiumBands: []PremiumBand{
			{MaxMoneyness: 2.0, Premium: 0.35},
			{MaxMoneyness: 4.0, Premium: 0.25},
		},
		FarCallPremium: 0.15,
		Assignment: AssignmentModel{
			ITMBase:        0.85,
			ITMSlope:       0.15,
			IVDivisor:      400,
			IVWeight:       0.05,
			ITMCap:         0.98,
			OTMBase:        0.05,
			OTMWeight:      0.8,
			OTMFloor:       0.02,
			OTMCap:         0.50,
			TimeDecayFloor: 0.1,
		},
		Compounding: CompoundingPolicy{
			MonthlyAcceleration: 0.12,
			ContractValue:       constants.AverageContractValue,
			CollateralFraction:  0.3,
			PremiumCapture:      0.45,
			ProjectionSeed:      constants.ProjectionSeedPremium,
			ProjectionGrowth:    constants.ProjectionPremiumGrowth,
		},
		Risk: RiskThresholds{
			ModerateConcentration:   0.70,
			AggressiveConcentration: 0.90,
			AlertConcentrationPct:   95,
			AlertVaR95Pct:           8,
			AlertAssignmentScore:    8,
			MaxAssignmentRate:       0.80,
			DrawdownHorizonDays:     5,
			VaRBasis:                VaRBasisVolatility,
		},
		Priority: PriorityThresholds{
			CompoundingMultiple: 2.0,
			ConcentrationPct:    90,
			NewContracts:        50,
		},
	}
}

// Validate checks that the weight tables sum to one and that every constant
// used as a divisor is positive.
func (p Policy) Validate() error {
	if len(p.StrikeLadder) == 0 {
		return invalidf("strike ladder cannot be empty")
	}
	weights := make([]float64, 0, len(p.StrikeLadder))
	for i, rung := range p.StrikeLadder {
		if rung.Multiplier <= 0 {
			return invalidf("strike ladder rung %d: multiplier must be positive, got %.4f", i, rung.Multiplier)
		}
		if rung.Weight < 0 {
			return invalidf("strike ladder rung %d: weight cannot be negative, got %.4f", i, rung.Weight)
		}
		weights = append(weights, rung.Weight)
	}
	if sum := mathutil.Sum(weights); !mathutil.WithinTolerance(sum, 1, constants.WeightTolerance) {
		return invalidf("strike ladder weights sum to %.6f, expected 1", sum)
	}

	if len(p.HedgeTiers) == 0 {
		return invalidf("hedge ladder cannot be empty")
	}
	shares := make([]float64, 0, len(p.HedgeTiers))
	for _, tier := range p.HedgeTiers {
		if tier.Name == "" {
			return invalidf("hedge tier name cannot be empty")
		}
		if tier.Share < 0 {
			return invalidf("hedge tier %s: share cannot be negative", tier.Name)
		}
		if len(tier.StrikeMultipliers) == 0 {
			return invalidf("hedge tier %s: at least one strike is required", tier.Name)
		}
		for _, m := range tier.StrikeMultipliers {
			if m <= 0 {
				return invalidf("hedge tier %s: strike multiplier must be positive, got %.4f", tier.Name, m)
			}
		}
		if tier.LeverageLow > tier.LeverageHigh {
			return invalidf("hedge tier %s: leverage range %.1f-%.1f is inverted", tier.Name, tier.LeverageLow, tier.LeverageHigh)
		}
		shares = append(shares, tier.Share)
	}
	if sum := mathutil.Sum(shares); !mathutil.WithinTolerance(sum, 1, constants.WeightTolerance) {
		return invalidf("hedge tier shares sum to %.6f, expected 1", sum)
	}

	for _, band := range p.CallPremiumBands {
		if band.Premium <= 0 {
			return invalidf("call premium band %.2f: premium must be positive", band.MaxMoneyness)
		}
	}
	if p.FarCallPremium <= 0 {
		return invalidf("far call premium must be positive, got %.4f", p.FarCallPremium)
	}

	if p.Assignment.IVDivisor <= 0 {
		return invalidf("assignment IV divisor must be positive")
	}
	if p.Compounding.ContractValue <= 0 {
		return invalidf("contract value must be positive, got %.2f", p.Compounding.ContractValue)
	}
	if p.Compounding.CollateralFraction <= 0 {
		return invalidf("collateral fraction must be positive, got %.4f", p.Compounding.CollateralFraction)
	}

	switch p.Risk.VaRBasis {
	case VaRBasisVolatility, VaRBasisPosition:
	default:
		return invalidf("unsupported VaR basis %q", p.Risk.VaRBasis)
	}
	return nil
}

// sortedLadder returns the strike ladder ordered by multiplier.
func (p Policy) sortedLadder() []StrikeWeight {
	ladder := make([]StrikeWeight, len(p.StrikeLadder))
	copy(ladder, p.StrikeLadder)
	sort.SliceStable(ladder, func(i, j int) bool {
		return ladder[i].Multiplier < ladder[j].Multiplier
	})
	return ladder
}

// WeightedStrikeMultiplier returns the capital-weighted mean multiplier of the
// strike ladder.
func (p Policy) WeightedStrikeMultiplier() float64 {
	total := 0.0
	for _, rung := range p.StrikeLadder {
		total += rung.Multiplier * rung.Weight
	}
	return total
}

// String is used in log fields.
func (b VaRBasis) String() string {
	return string(b)
}

// ParseVaRBasis converts a config string to a VaRBasis; empty means volatility.
func ParseVaRBasis(value string) (VaRBasis, error) {
	switch VaRBasis(value) {
	case "", VaRBasisVolatility:
		return VaRBasisVolatility, nil
	case VaRBasisPosition:
		return VaRBasisPosition, nil
	default:
		return "", fmt.Errorf("%w: unsupported VaR basis %q", ErrInvalidParameter, value)
	}
}
