package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test config",
			configPath: "../../test/test_config.yaml",
		},
		{
			name:       "Example config",
			configPath: "../../" + constants.ExampleConfigFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, conf)
			assert.NoError(t, conf.Validate())
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	conf, err := LoadConfiguration("../../test/test_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 2.40, conf.Parameters.CurrentPrice)
	assert.Equal(t, 425, conf.Parameters.IVLevel)
	// Unset keys fall back to the tuned defaults.
	assert.Equal(t, "ASST", conf.Parameters.Symbol)
	assert.Equal(t, 0.062, conf.Parameters.KellyFraction)
	assert.Equal(t, 0.70, conf.Parameters.PutAllocation)

	assert.Equal(t, "position", conf.Policy.VaRBasis)
	assert.Equal(t, 3, conf.Simulation.Months)
	assert.Equal(t, "2025-01", conf.Simulation.StartDate)
	assert.Equal(t, 4, conf.Simulation.ProjectionMonths)
	assert.Equal(t, constants.DefaultStartingContracts, conf.Simulation.Accumulation.StartingContracts)

	require.Len(t, conf.Scenarios, 3)
	assert.Equal(t, "low volatility", conf.Scenarios[1].Name)
	require.NotNil(t, conf.Scenarios[1].Parameters.IVLevel)
	assert.Equal(t, 200, *conf.Scenarios[1].Parameters.IVLevel)
	assert.Nil(t, conf.Scenarios[1].Parameters.CurrentPrice)

	assert.Len(t, conf.ActiveScenarios(), 2)
	assert.Equal(t, "warn", conf.Logging.Level)
	assert.Equal(t, "json", conf.Logging.Format)
	assert.Equal(t, constants.OutputFormatCSV, conf.Output.Format)
}

func TestLoadConfigurationDefaults(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, "output:\n  format: pretty\n"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Parameters, conf.Parameters)
	assert.Equal(t, want.Simulation.Months, conf.Simulation.Months)
	assert.Equal(t, want.Simulation.PremiumGrowth, conf.Simulation.PremiumGrowth)
	assert.Equal(t, want.Simulation.Accumulation, conf.Simulation.Accumulation)

	require.Len(t, conf.Scenarios, 1)
	assert.Equal(t, constants.DefaultScenarioName, conf.Scenarios[0].Name)
	assert.True(t, conf.Scenarios[0].Active)
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("PREMIUM_PARAMETERS_CURRENTPRICE", "3.10")
	t.Setenv("PREMIUM_SIMULATION_MONTHS", "9")

	conf, err := LoadConfiguration(writeConfig(t, "parameters:\n  currentPrice: 2.40\n"))
	require.NoError(t, err)

	assert.Equal(t, 3.10, conf.Parameters.CurrentPrice)
	assert.Equal(t, 9, conf.Simulation.Months)
}

func TestLoadConfigurationMalformed(t *testing.T) {
	_, err := LoadConfiguration(writeConfig(t, "parameters: [unclosed\n"))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, "parameters:\n  ivLevel: high\n"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())

	resolved, err := conf.Resolve(conf.Scenarios[0])
	require.NoError(t, err)
	assert.Equal(t, strategy.DefaultParameters(), resolved.Parameters)
	assert.Equal(t, strategy.VaRBasisVolatility, resolved.Policy.Risk.VaRBasis)
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("parameters:\n  currentPrice: 1.95\nscenarios:\n  - name: only\n    active: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.95, conf.Parameters.CurrentPrice)
	assert.Equal(t, 4000.0, conf.Parameters.MonthlyCapital)
	require.Len(t, conf.Scenarios, 1)
	assert.Equal(t, "only", conf.Scenarios[0].Name)

	_, err = LoadConfigurationFromReader(strings.NewReader("scenarios: {{"))
	assert.Error(t, err)
}

func TestValidateHorizonBounds(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "At cap", body: "simulation:\n  months: 120\n  projectionMonths: 120\n  accumulation:\n    months: 120\n"},
		{name: "Accumulation disabled", body: "simulation:\n  accumulation:\n    months: 0\n"},
		{name: "Months above cap", body: "simulation:\n  months: 121\n", wantErr: true},
		{name: "Projection above cap", body: "simulation:\n  projectionMonths: 7000\n", wantErr: true},
		{name: "Accumulation above cap", body: "simulation:\n  accumulation:\n    months: 2000000000\n", wantErr: true},
		{name: "Zero projection", body: "simulation:\n  projectionMonths: 0\n", wantErr: true},
		{name: "Negative edge", body: "simulation:\n  edge: -0.1\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := LoadConfiguration(writeConfig(t, tt.body))
			require.NoError(t, err)

			err = conf.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, strategy.ErrInvalidParameter)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfigurationZeroEdge(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, "simulation:\n  edge: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, conf.Simulation.Edge)
	require.NoError(t, conf.Validate())

	conf, err = LoadConfiguration(writeConfig(t, "simulation:\n  months: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultEdge, conf.Simulation.Edge)
}
