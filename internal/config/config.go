// Package config defines the data structures related to configuration and
// includes functions for loading, resolving and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/datetime"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"github.com/iwvelando/premium-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for premium-forecast.
type Configuration struct {
	Parameters Parameters
	Policy     PolicyConfig
	Simulation Simulation
	Scenarios  []Scenario
	Logging    LoggingConfig `yaml:"logging,omitempty"`
	Output     OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Parameters are the strategy parameters shared by every scenario.
type Parameters struct {
	Symbol               string
	CurrentPrice         float64
	MonthlyCapital       float64
	PutAllocation        float64
	CallAllocation       float64
	KellyFraction        float64
	SafetyFactor         float64
	TargetAssignmentRate float64
	IVLevel              int
	MaxConcentration     float64
	MinHedgeRatio        float64
}

// PolicyConfig overrides parts of the default policy tables. Empty tables keep
// the defaults.
type PolicyConfig struct {
	StrikeLadder      []StrikeWeight
	HedgeTiers        []HedgeTier
	VaRBasis          string
	MaxAssignmentRate float64
}

// StrikeWeight is one rung of the put strike ladder.
type StrikeWeight struct {
	Multiplier float64
	Weight     float64
}

// HedgeTier is one tier of the call hedge ladder.
type HedgeTier struct {
	Name              string
	Share             float64
	StrikeMultipliers []float64
	Probability       float64
	LeverageLow       float64
	LeverageHigh      float64
}

// Simulation drives the multi-month plan run and the projections.
type Simulation struct {
	Months              int
	StartDate           string
	SeedPremium         float64
	PremiumGrowth       float64
	StartingPortfolio   float64
	PortfolioStep       float64
	Edge                float64
	ProjectionMonths    int
	RecoveryScenarios   []float64
	AppreciationTargets []float64
	Accumulation        Accumulation
}

// Accumulation seeds the share accumulation projection.
type Accumulation struct {
	Months            int
	StartingContracts int
	InitialPortfolio  float64
	PremiumCollected  float64
}

// Scenario is a named variation of the shared parameters and simulation.
type Scenario struct {
	Name       string
	Active     bool
	Parameters ParameterOverrides
	Simulation SimulationOverrides
}

// ParameterOverrides replace individual shared parameters when set.
type ParameterOverrides struct {
	CurrentPrice   *float64
	MonthlyCapital *float64
	PutAllocation  *float64
	CallAllocation *float64
	SafetyFactor   *float64
	IVLevel        *int
}

// SimulationOverrides replace individual simulation settings when set.
type SimulationOverrides struct {
	SeedPremium       *float64
	PremiumGrowth     *float64
	StartingPortfolio *float64
	PortfolioStep     *float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Unset keys take the defaults the strategy was tuned
// with, and any key can be overridden from the environment, e.g.
// PREMIUM_PARAMETERS_CURRENTPRICE.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r with
// the same defaults and environment overrides as LoadConfiguration.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyScenarioDefault()
	return &configuration, nil
}

// Default returns the configuration LoadConfiguration produces for an empty
// file.
func Default() *Configuration {
	p := strategy.DefaultParameters()
	conf := &Configuration{
		Parameters: Parameters{
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
		},
		Policy: PolicyConfig{VaRBasis: string(strategy.VaRBasisVolatility)},
		Simulation: Simulation{
			Months:            constants.DefaultPlanMonths,
			SeedPremium:       constants.DefaultSeedPremium,
			PremiumGrowth:     constants.DefaultPremiumGrowth,
			StartingPortfolio: constants.DefaultStartingPortfolio,
			PortfolioStep:     constants.DefaultPortfolioStep,
			Edge:              constants.DefaultEdge,
			ProjectionMonths:  constants.DefaultProjectionMonths,
			Accumulation: Accumulation{
				Months:            constants.DefaultAccumulationMonths,
				StartingContracts: constants.DefaultStartingContracts,
				InitialPortfolio:  constants.DefaultInitialPortfolio,
				PremiumCollected:  constants.DefaultPremiumCollected,
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{Format: constants.OutputFormatPretty},
	}
	conf.applyScenarioDefault()
	return conf
}

func setDefaults(v *viper.Viper) {
	d := Default()
	p := d.Parameters
	v.SetDefault("parameters.symbol", p.Symbol)
	v.SetDefault("parameters.currentPrice", p.CurrentPrice)
	v.SetDefault("parameters.monthlyCapital", p.MonthlyCapital)
	v.SetDefault("parameters.putAllocation", p.PutAllocation)
	v.SetDefault("parameters.callAllocation", p.CallAllocation)
	v.SetDefault("parameters.kellyFraction", p.KellyFraction)
	v.SetDefault("parameters.safetyFactor", p.SafetyFactor)
	v.SetDefault("parameters.targetAssignmentRate", p.TargetAssignmentRate)
	v.SetDefault("parameters.ivLevel", p.IVLevel)
	v.SetDefault("parameters.maxConcentration", p.MaxConcentration)
	v.SetDefault("parameters.minHedgeRatio", p.MinHedgeRatio)

	v.SetDefault("policy.varBasis", d.Policy.VaRBasis)

	s := d.Simulation
	v.SetDefault("simulation.months", s.Months)
	v.SetDefault("simulation.seedPremium", s.SeedPremium)
	v.SetDefault("simulation.premiumGrowth", s.PremiumGrowth)
	v.SetDefault("simulation.startingPortfolio", s.StartingPortfolio)
	v.SetDefault("simulation.portfolioStep", s.PortfolioStep)
	v.SetDefault("simulation.edge", s.Edge)
	v.SetDefault("simulation.projectionMonths", s.ProjectionMonths)
	v.SetDefault("simulation.accumulation.months", s.Accumulation.Months)
	v.SetDefault("simulation.accumulation.startingContracts", s.Accumulation.StartingContracts)
	v.SetDefault("simulation.accumulation.initialPortfolio", s.Accumulation.InitialPortfolio)
	v.SetDefault("simulation.accumulation.premiumCollected", s.Accumulation.PremiumCollected)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("output.format", d.Output.Format)
}

// applyScenarioDefault adds an active base scenario when none is configured.
func (c *Configuration) applyScenarioDefault() {
	if len(c.Scenarios) == 0 {
		c.Scenarios = []Scenario{{Name: constants.DefaultScenarioName, Active: true}}
	}
}

// ActiveScenarios returns the scenarios marked active, in file order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, s := range c.Scenarios {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}

// Validate returns the first error that would stop a run: an unsupported
// output format, an unparseable start date, a horizon above
// constants.MaxProjectionMonths, a negative edge or a scenario whose
// parameters or policy the calculators reject.
func (c *Configuration) Validate() error {
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	// Zero accumulation months disables that projection.
	horizons := []struct {
		name   string
		months int
		min    int
	}{
		{"simulation months", c.Simulation.Months, 1},
		{"projection months", c.Simulation.ProjectionMonths, 1},
		{"accumulation months", c.Simulation.Accumulation.Months, 0},
	}
	for _, h := range horizons {
		if h.months < h.min || h.months > constants.MaxProjectionMonths {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d",
				strategy.ErrInvalidParameter, h.name, h.min, constants.MaxProjectionMonths, h.months)
		}
	}
	if c.Simulation.Edge < 0 {
		return fmt.Errorf("%w: simulation edge cannot be negative, got %.4f", strategy.ErrInvalidParameter, c.Simulation.Edge)
	}
	if c.Simulation.StartDate != "" {
		if _, err := datetime.ParseMonth(c.Simulation.StartDate); err != nil {
			return fmt.Errorf("simulation start date: %w", err)
		}
	}
	for _, s := range c.ActiveScenarios() {
		if _, err := c.Resolve(s); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	cv := validation.ConfigValidator{Months: c.Simulation.Months}
	for _, s := range c.Scenarios {
		sc := validation.ScenarioConfig{
			Name:   s.Name,
			Active: s.Active,
		}
		if resolved, err := c.Resolve(s); err == nil {
			sc.PutAllocation = resolved.Parameters.PutAllocation
			sc.CallAllocation = resolved.Parameters.CallAllocation
			sc.SafetyFactor = resolved.Parameters.SafetyFactor
			sc.SeedPremium = resolved.Simulation.SeedPremium
			sc.StartingPortfolio = resolved.Simulation.StartingPortfolio
		}
		cv.Scenarios = append(cv.Scenarios, sc)
	}
	return cv.ValidateAll()
}
