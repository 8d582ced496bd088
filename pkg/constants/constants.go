// Package constants provides shared constants for the premium-forecast application.
package constants

import (
	"math"
	"time"
)

// DateTimeLayout is the format used for plan month labels and for the
// simulation start date in config files.
const DateTimeLayout = "2006-01"

// Market constants
const (
	// TradingDaysPerYear is used to convert annualized volatility to daily.
	TradingDaysPerYear = 252

	// SharesPerContract is the number of shares controlled by one option contract.
	SharesPerContract = 100

	// AverageContractValue is the assumed capital per newly written put contract.
	AverageContractValue = 250.0

	// DaysPerMonth is the day count used to normalize days to expiry.
	DaysPerMonth = 30.0

	// DefaultDaysToExpiry is the default option tenor in days.
	DefaultDaysToExpiry = 27

	// Z95 and Z99 are the one-sided normal quantiles used for VaR.
	Z95 = 1.645
	Z99 = 2.33
)

// Strategy defaults
const (
	// DefaultEdge is the expected return advantage fed to Kelly sizing.
	DefaultEdge = 0.15

	// DefaultProjectionMonths is the length of the pure premium projection.
	DefaultProjectionMonths = 12

	// MaxProjectionMonths bounds every monthly horizon: plan runs, the premium
	// projection and the accumulation projection.
	MaxProjectionMonths = 120

	// MaxContracts bounds any computed contract count.
	MaxContracts = math.MaxInt32

	// ProjectionSeedPremium is the month-one premium of the growth projection.
	ProjectionSeedPremium = 1000.0

	// ProjectionPremiumGrowth is the assumed month-over-month premium growth.
	ProjectionPremiumGrowth = 0.12

	// PositionEstimate is the share of the portfolio assumed to sit in the
	// underlying when computing plan risk.
	PositionEstimate = 0.80
)

// Simulation defaults
const (
	// DefaultScenarioName names the scenario added when none is configured.
	DefaultScenarioName = "Base"

	// DefaultPlanMonths is the number of monthly plans generated per scenario.
	DefaultPlanMonths = 6

	// DefaultSeedPremium is the month-one premium of a plan run.
	DefaultSeedPremium = 1000.0

	// DefaultPremiumGrowth is the month-over-month premium growth of a plan run.
	DefaultPremiumGrowth = 0.15

	// DefaultStartingPortfolio is the month-one portfolio value of a plan run.
	DefaultStartingPortfolio = 25000.0

	// DefaultPortfolioStep is added to the portfolio value after each month.
	DefaultPortfolioStep = 5000.0

	// Share accumulation projection seeds.
	DefaultAccumulationMonths = 6
	DefaultStartingContracts  = 38
	DefaultInitialPortfolio   = 3792.0
	DefaultPremiumCollected   = 4349.0
)

// Precision constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// WeightTolerance is the tolerance allowed when policy weights are summed.
	WeightTolerance = 1e-9

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys.
	EnvPrefix = "PREMIUM"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeout bounds graceful server shutdown
	DefaultShutdownTimeout = 10 * time.Second
)
