// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/premium-forecast/internal/planner"
)

// FindForecast finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindForecast(results []planner.Forecast, name string) *planner.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindPlan returns the plan for month, or nil when the forecast has none.
func FindPlan(f *planner.Forecast, month int) *planner.MonthlyPlan {
	if f == nil {
		return nil
	}
	for i := range f.Plans {
		if f.Plans[i].Month == month {
			return &f.Plans[i]
		}
	}
	return nil
}
