// Package strategy implements the option-selling calculators: Kelly position
// sizing, strike allocation, assignment probability, premium compounding,
// hedge-ladder budgeting, risk snapshots and performance attribution.
//
// All calculators are pure functions of a validated ParameterSet and Policy.
// History is kept by the caller in a Ledger.
package strategy

import (
	"github.com/iwvelando/premium-forecast/pkg/constants"
	"go.uber.org/zap"
)

// ParameterSet holds the hand-tuned constants of one strategy run.
type ParameterSet struct {
	Symbol               string
	CurrentPrice         float64
	MonthlyCapital       float64
	PutAllocation        float64
	CallAllocation       float64
	KellyFraction        float64 // informational; SafetyFactor carries the applied fraction
	SafetyFactor         float64
	TargetAssignmentRate float64 // informational; MaxAssignmentRate drives alerts
	IVLevel              int // percent, e.g. 425 for 425%
	MaxConcentration     float64 // DailyCheck ceiling on the symbol share of gross exposure
	MinHedgeRatio        float64
}

// DefaultParameters returns the parameters the strategy was tuned with.
func DefaultParameters() ParameterSet {
	return ParameterSet{
		Symbol:               "ASST",
		CurrentPrice:         2.40,
		MonthlyCapital:       4000,
		PutAllocation:        0.70,
		CallAllocation:       0.30,
		KellyFraction:        0.062,
		SafetyFactor:         0.50,
		TargetAssignmentRate: 0.75,
		IVLevel:              425,
		MaxConcentration:     1.00,
		MinHedgeRatio:        0.25,
	}
}

// NewParameterSet validates p and returns it.
func NewParameterSet(p ParameterSet) (ParameterSet, error) {
	if err := p.Validate(); err != nil {
		return ParameterSet{}, err
	}
	return p, nil
}

// Validate rejects parameter sets the calculators cannot work with.
func (p ParameterSet) Validate() error {
	if p.CurrentPrice <= 0 {
		return invalidf("current price must be positive, got %.4f", p.CurrentPrice)
	}
	if p.MonthlyCapital <= 0 {
		return invalidf("monthly capital must be positive, got %.2f", p.MonthlyCapital)
	}
	if p.IVLevel <= 0 {
		return invalidf("IV level must be positive, got %d", p.IVLevel)
	}
	if p.MaxConcentration <= 0 {
		return invalidf("max concentration must be positive, got %.4f", p.MaxConcentration)
	}

	fractions := []struct {
		name  string
		value float64
	}{
		{"put allocation", p.PutAllocation},
		{"call allocation", p.CallAllocation},
		{"kelly fraction", p.KellyFraction},
		{"safety factor", p.SafetyFactor},
		{"target assignment rate", p.TargetAssignmentRate},
		{"min hedge ratio", p.MinHedgeRatio},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value > 1 {
			return invalidf("%s must be within [0, 1], got %.4f", f.name, f.value)
		}
	}

	if sum := p.PutAllocation + p.CallAllocation; sum > 1+constants.WeightTolerance {
		return invalidf("put and call allocations sum to %.4f, must not exceed 1", sum)
	}
	return nil
}

// Volatility returns the IV level as a decimal, e.g. 4.25 for 425%.
func (p ParameterSet) Volatility() float64 {
	return float64(p.IVLevel) / constants.PercentageMultiplier
}

// calculator carries the shared inputs of every component.
type calculator struct {
	logger *zap.Logger
	params ParameterSet
	policy Policy
}

func newCalculator(logger *zap.Logger, params ParameterSet, policy Policy) (calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := params.Validate(); err != nil {
		return calculator{}, err
	}
	if err := policy.Validate(); err != nil {
		return calculator{}, err
	}
	return calculator{logger: logger, params: params, policy: policy}, nil
}

// Parameters returns the parameter set the calculator was built with.
func (c calculator) Parameters() ParameterSet {
	return c.params
}
