// Package validation provides configuration validation utilities.
package validation

import "fmt"

// Warning thresholds.
const (
	// SafetyFactorWarning flags Kelly scaling above half Kelly.
	SafetyFactorWarning = 0.5

	// LongHorizonMonths flags plan runs whose compounding assumptions
	// stretch past three years.
	LongHorizonMonths = 36
)

// ConfigValidator holds the settings checked by ValidateAll.
type ConfigValidator struct {
	Months    int
	Scenarios []ScenarioConfig
}

// ScenarioConfig is the resolved view of one scenario.
type ScenarioConfig struct {
	Name              string
	Active            bool
	PutAllocation     float64
	CallAllocation    float64
	SafetyFactor      float64
	SeedPremium       float64
	StartingPortfolio float64
}

// ValidateAllocation warns when part of the monthly premium is neither
// reinvested nor budgeted for hedges.
func ValidateAllocation(name string, put, call float64) string {
	if unallocated := 1 - put - call; unallocated > 1e-9 {
		return fmt.Sprintf("Scenario '%s' leaves %.1f%% of premium unallocated (put %.2f + call %.2f)",
			name, unallocated*100, put, call)
	}
	return ""
}

// ValidateSafetyFactor warns when sizing runs above half Kelly.
func ValidateSafetyFactor(name string, factor float64) string {
	if factor > SafetyFactorWarning {
		return fmt.Sprintf("Scenario '%s' sizes positions above half Kelly (safety factor %.2f > %.2f)",
			name, factor, SafetyFactorWarning)
	}
	return ""
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.Months > LongHorizonMonths {
		warnings = append(warnings, fmt.Sprintf("Simulation runs %d months; compounding assumptions past %d months are speculative",
			cv.Months, LongHorizonMonths))
	}

	active := 0
	seen := make(map[string]bool)
	for _, s := range cv.Scenarios {
		if seen[s.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", s.Name))
		}
		seen[s.Name] = true

		if !s.Active {
			continue
		}
		active++

		if w := ValidateAllocation(s.Name, s.PutAllocation, s.CallAllocation); w != "" {
			warnings = append(warnings, w)
		}
		if w := ValidateSafetyFactor(s.Name, s.SafetyFactor); w != "" {
			warnings = append(warnings, w)
		}
		if s.StartingPortfolio > 0 && s.SeedPremium > s.StartingPortfolio {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' collects more premium (%.2f) than the starting portfolio (%.2f)",
				s.Name, s.SeedPremium, s.StartingPortfolio))
		}
	}

	if active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be planned")
	}

	return warnings
}
