package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/premium-forecast/internal/config"
	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"go.uber.org/zap"
)

// Forecast holds all results for one scenario.
type Forecast struct {
	Name         string
	Plans        []MonthlyPlan
	Projection   []strategy.ProjectionRow
	Accumulation []strategy.AccumulationRow
	Appreciation []strategy.AppreciationScenario
	Assignment   *strategy.AssignmentReport
	Alerts       []string
}

// Export is the analysis dataset of one planner.
type Export struct {
	PremiumProjections []strategy.ProjectionRow
	PerformanceHistory []strategy.PerformanceRecord
	RiskAlerts         []string
	CompoundingHistory []strategy.AllocationPlan
}

// Run generates a plan for every simulated month, then the premium,
// accumulation and appreciation projections. Premium grows by
// sim.PremiumGrowth each month and the portfolio by sim.PortfolioStep.
func (p *Planner) Run(sim config.Simulation) (Forecast, error) {
	return p.RunWithTime(sim, time.Now())
}

// RunWithTime is Run with an injectable generation time.
func (p *Planner) RunWithTime(sim config.Simulation, now time.Time) (Forecast, error) {
	if sim.Months < 1 || sim.Months > constants.MaxProjectionMonths {
		return Forecast{}, fmt.Errorf("%w: simulation months must be between 1 and %d, got %d",
			strategy.ErrInvalidParameter, constants.MaxProjectionMonths, sim.Months)
	}

	result := Forecast{Name: p.opts.Scenario}
	portfolio := sim.StartingPortfolio
	for month := 1; month <= sim.Months; month++ {
		premium := sim.SeedPremium * math.Pow(1+sim.PremiumGrowth, float64(month-1))
		plan, err := p.GeneratePlanWithTime(month, premium, portfolio, now)
		if err != nil {
			return result, err
		}
		result.Plans = append(result.Plans, plan)
		portfolio += sim.PortfolioStep
	}

	var err error
	if result.Projection, err = p.compounder.ProjectGrowth(sim.ProjectionMonths); err != nil {
		return result, err
	}

	acc := sim.Accumulation
	if acc.Months > 0 {
		result.Accumulation, err = p.projector.ProjectAccumulation(strategy.AccumulationInputs{
			Months:            acc.Months,
			StartingContracts: acc.StartingContracts,
			InitialPortfolio:  acc.InitialPortfolio,
			PremiumCollected:  acc.PremiumCollected,
		})
		if err != nil {
			return result, err
		}

		final := result.Accumulation[len(result.Accumulation)-1]
		result.Appreciation, err = p.projector.AppreciationScenarios(final.CumulativeShares, final.EffectiveCost,
			final.CumulativePremium, final.CallHedgeValue, sim.AppreciationTargets)
		if err != nil {
			return result, err
		}

		if final.CumulativeShares > 0 {
			report, err := p.assignments.Protocol(final.CumulativeShares, final.EffectiveCost)
			if err != nil {
				return result, err
			}
			result.Assignment = &report
		}
	}

	result.Alerts = p.ledger.Alerts()
	return result, nil
}

// Export returns the planner's analysis datasets. The premium projection is
// recomputed and never touches the ledger.
func (p *Planner) Export(projectionMonths int) (Export, error) {
	projections, err := p.compounder.ProjectGrowth(projectionMonths)
	if err != nil {
		return Export{}, err
	}
	return Export{
		PremiumProjections: projections,
		PerformanceHistory: p.ledger.Performance(),
		RiskAlerts:         p.ledger.Alerts(),
		CompoundingHistory: p.ledger.Allocations(),
	}, nil
}

// GetForecasts runs every active scenario with its own planner.
func GetForecasts(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	return GetForecastsWithTime(logger, conf, time.Now())
}

// GetForecastsWithTime is GetForecasts with an injectable generation time.
func GetForecastsWithTime(logger *zap.Logger, conf config.Configuration, now time.Time) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Forecast
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "planner.GetForecasts"),
			)
			continue
		}

		resolved, err := conf.Resolve(scenario)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		p, err := New(logger, resolved.Parameters, resolved.Policy, Options{
			Scenario:          scenario.Name,
			StartDate:         resolved.Simulation.StartDate,
			Edge:              &resolved.Simulation.Edge,
			RecoveryScenarios: resolved.Simulation.RecoveryScenarios,
		})
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		result, err := p.RunWithTime(resolved.Simulation, now)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		logger.Info("scenario planned",
			zap.String("op", "planner.GetForecasts"),
			zap.String("scenario", scenario.Name),
			zap.Int("months", len(result.Plans)),
			zap.Int("alerts", len(result.Alerts)),
		)
		results = append(results, result)
	}

	return results, nil
}
