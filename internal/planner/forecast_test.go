package planner_test

import (
	"testing"
	"time"

	"github.com/iwvelando/premium-forecast/internal/config"
	"github.com/iwvelando/premium-forecast/internal/planner"
	"github.com/iwvelando/premium-forecast/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetForecasts(t *testing.T) {
	conf, err := config.LoadConfiguration("../../test/test_config.yaml")
	require.NoError(t, err)

	now := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	results, err := planner.GetForecastsWithTime(zap.NewNop(), *conf, now)
	require.NoError(t, err)
	require.Len(t, results, 2)

	base := testutil.FindForecast(results, "current path")
	require.NotNil(t, base)
	assert.Len(t, base.Plans, 3)
	assert.Len(t, base.Projection, 4)
	assert.Equal(t, "2025-03", testutil.FindPlan(base, 3).Label)
	assert.Nil(t, testutil.FindForecast(results, "disabled"))

	// Position-basis VaR at 80% concentration is far above the 8% alert.
	for _, plan := range base.Plans {
		assert.Equal(t, "position", string(plan.Risk.VaRBasis))
		assert.Greater(t, plan.Risk.PositionVaR95Pct, 8.0)
	}

	lowVol := testutil.FindForecast(results, "low volatility")
	require.NotNil(t, lowVol)
	assert.Less(t, lowVol.Plans[0].Risk.DailyVolatilityPct, base.Plans[0].Risk.DailyVolatilityPct)
	// Lower IV raises the Kelly fraction; the quarter safety factor scales it down.
	sizing := lowVol.Plans[0].Sizing
	assert.Greater(t, sizing.KellyFraction, base.Plans[0].Sizing.KellyFraction)
	assert.InDelta(t, sizing.KellyFraction*0.25, sizing.AdjustedKelly, 1e-12)
}

func TestGetForecastsDefaults(t *testing.T) {
	results, err := planner.GetForecasts(nil, *config.Default())
	require.NoError(t, err)
	require.Len(t, results, 1)

	f := results[0]
	assert.Len(t, f.Plans, 6)
	assert.Len(t, f.Projection, 12)
	assert.Len(t, f.Accumulation, 6)
	assert.Len(t, f.Appreciation, 5)
	assert.NotNil(t, f.Assignment)
}

func TestGetForecastsInvalidScenario(t *testing.T) {
	conf := config.Default()
	iv := -5
	conf.Scenarios = append(conf.Scenarios, config.Scenario{
		Name:       "broken",
		Active:     true,
		Parameters: config.ParameterOverrides{IVLevel: &iv},
	})

	_, err := planner.GetForecasts(zap.NewNop(), *conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
