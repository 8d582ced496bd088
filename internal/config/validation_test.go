package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr string
	}{
		{name: "Defaults", mutate: func(*Configuration) {}},
		{
			name:    "Bad output format",
			mutate:  func(c *Configuration) { c.Output.Format = "json" },
			wantErr: "output format",
		},
		{
			name:    "Zero months",
			mutate:  func(c *Configuration) { c.Simulation.Months = 0 },
			wantErr: "simulation months",
		},
		{
			name:    "Zero projection months",
			mutate:  func(c *Configuration) { c.Simulation.ProjectionMonths = 0 },
			wantErr: "projection months",
		},
		{
			name:    "Bad start date",
			mutate:  func(c *Configuration) { c.Simulation.StartDate = "October" },
			wantErr: "start date",
		},
		{
			name: "Invalid active scenario",
			mutate: func(c *Configuration) {
				c.Scenarios = append(c.Scenarios, Scenario{Name: "broken", Active: true, Parameters: ParameterOverrides{IVLevel: intPtr(-1)}})
			},
			wantErr: `scenario "broken"`,
		},
		{
			name: "Invalid inactive scenario is ignored",
			mutate: func(c *Configuration) {
				c.Scenarios = append(c.Scenarios, Scenario{Name: "broken", Parameters: ParameterOverrides{IVLevel: intPtr(-1)}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Default()
			tt.mutate(conf)
			err := conf.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := Default()
	assert.Empty(t, conf.ValidateConfiguration())

	conf.Simulation.Months = 60
	conf.Scenarios = append(conf.Scenarios, Scenario{
		Name:       "idle premium",
		Active:     true,
		Parameters: ParameterOverrides{PutAllocation: float64Ptr(0.5)},
	})

	warnings := conf.ValidateConfiguration()
	assert.Len(t, warnings, 2)
	joined := strings.Join(warnings, "\n")
	assert.Contains(t, joined, "60 months")
	assert.Contains(t, joined, "idle premium")
}
