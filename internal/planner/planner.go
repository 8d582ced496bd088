// Package planner composes the strategy calculators into monthly plans and
// runs them over the configured scenarios.
package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/datetime"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"go.uber.org/zap"
)

// Execution priorities attached to a plan.
const (
	PriorityCompounding   = "HIGH: Significant compounding opportunity"
	PriorityConcentration = "MEDIUM: Monitor concentration risk"
	PriorityExpansion     = "HIGH: Large position expansion planned"
)

// MonthlyPlan is everything computed for one month.
type MonthlyPlan struct {
	ID                uuid.UUID
	Scenario          string
	Month             int
	Label             string
	PremiumCollected  float64
	PortfolioValue    float64
	Allocation        strategy.AllocationPlan
	Sizing            strategy.PositionSizing
	Strikes           []strategy.StrikePlan
	Hedge             []strategy.TierPlan
	Risk              strategy.RiskSnapshot
	ExecutionPriority []string
	GeneratedAt       time.Time
}

// Options tune plan generation. Zero values take the defaults.
type Options struct {
	Scenario          string
	StartDate         string   // month one label, YYYY-MM
	Edge              *float64 // nil uses constants.DefaultEdge
	RecoveryScenarios []float64
}

// Planner owns one set of calculators and the ledger they report into.
type Planner struct {
	logger      *zap.Logger
	opts        Options
	edge        float64
	policy      strategy.Policy
	sizer       *strategy.PositionSizer
	compounder  *strategy.PremiumCompounder
	hedger      *strategy.HedgeLadderOptimizer
	evaluator   *strategy.RiskEvaluator
	tracker     *strategy.PerformanceTracker
	projector   *strategy.Projector
	assignments *strategy.AssignmentManager
	ledger      *strategy.Ledger
}

// New builds a planner. params and policy are validated once here.
func New(logger *zap.Logger, params strategy.ParameterSet, policy strategy.Policy, opts Options) (*Planner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	edge := constants.DefaultEdge
	if opts.Edge != nil {
		edge = *opts.Edge
	}
	if edge < 0 {
		return nil, fmt.Errorf("%w: edge cannot be negative, got %.4f", strategy.ErrInvalidParameter, edge)
	}
	if opts.StartDate == "" {
		opts.StartDate = datetime.CurrentMonth(time.Now())
	}
	if _, err := datetime.ParseMonth(opts.StartDate); err != nil {
		return nil, err
	}

	p := &Planner{
		logger:  logger,
		opts:    opts,
		edge:    edge,
		policy:  policy,
		tracker: strategy.NewPerformanceTracker(logger),
		ledger:  strategy.NewLedger(),
	}

	var err error
	if p.sizer, err = strategy.NewPositionSizer(logger, params, policy); err != nil {
		return nil, err
	}
	if p.compounder, err = strategy.NewPremiumCompounder(logger, params, policy); err != nil {
		return nil, err
	}
	if p.hedger, err = strategy.NewHedgeLadderOptimizer(logger, params, policy); err != nil {
		return nil, err
	}
	if p.evaluator, err = strategy.NewRiskEvaluator(logger, params, policy); err != nil {
		return nil, err
	}
	if p.projector, err = strategy.NewProjector(logger, params, policy); err != nil {
		return nil, err
	}
	if p.assignments, err = strategy.NewAssignmentManager(logger, params, policy); err != nil {
		return nil, err
	}
	return p, nil
}

// Ledger returns the planner's append-only ledger.
func (p *Planner) Ledger() *strategy.Ledger {
	return p.ledger
}

// Parameters returns the validated parameters the planner runs with.
func (p *Planner) Parameters() strategy.ParameterSet {
	return p.sizer.Parameters()
}

// GeneratePlan computes the plan for month given the premium collected and the
// current portfolio value. The allocation and any risk alerts are appended to
// the ledger.
func (p *Planner) GeneratePlan(month int, premium, portfolioValue float64) (MonthlyPlan, error) {
	return p.GeneratePlanWithTime(month, premium, portfolioValue, time.Now())
}

// GeneratePlanWithTime is GeneratePlan with an injectable generation time.
func (p *Planner) GeneratePlanWithTime(month int, premium, portfolioValue float64, now time.Time) (MonthlyPlan, error) {
	allocation, err := p.compounder.MonthlyAllocation(premium, month)
	if err != nil {
		return MonthlyPlan{}, err
	}
	sizing, err := p.sizer.SizePosition(portfolioValue, p.edge)
	if err != nil {
		return MonthlyPlan{}, err
	}
	strikes, err := p.sizer.AllocateStrikes(allocation.TotalPutCapital)
	if err != nil {
		return MonthlyPlan{}, err
	}
	hedge, err := p.hedger.OptimizeLadder(allocation.CallAllocation, p.opts.RecoveryScenarios)
	if err != nil {
		return MonthlyPlan{}, err
	}
	risk, err := p.evaluator.Evaluate(portfolioValue, portfolioValue*constants.PositionEstimate)
	if err != nil {
		return MonthlyPlan{}, fmt.Errorf("month %d risk: %w", month, err)
	}
	label, err := datetime.MonthLabel(p.opts.StartDate, month)
	if err != nil {
		return MonthlyPlan{}, err
	}

	p.ledger.AppendAllocation(allocation)
	p.ledger.AppendAlerts(risk.Alerts...)

	plan := MonthlyPlan{
		ID:                uuid.New(),
		Scenario:          p.opts.Scenario,
		Month:             month,
		Label:             label,
		PremiumCollected:  premium,
		PortfolioValue:    portfolioValue,
		Allocation:        allocation,
		Sizing:            sizing,
		Strikes:           strikes,
		Hedge:             hedge,
		Risk:              risk,
		ExecutionPriority: ExecutionPriority(allocation, risk, p.policy.Priority),
		GeneratedAt:       now,
	}

	p.logger.Debug("monthly plan generated",
		zap.String("op", "planner.GeneratePlan"),
		zap.String("scenario", p.opts.Scenario),
		zap.Int("month", month),
		zap.String("rating", string(risk.Rating)),
		zap.Int("priorities", len(plan.ExecutionPriority)),
	)
	return plan, nil
}

// ExecutionPriority lists the actions a plan calls for. The checks are
// independent and appear in a fixed order.
func ExecutionPriority(allocation strategy.AllocationPlan, risk strategy.RiskSnapshot, t strategy.PriorityThresholds) []string {
	var priorities []string
	if allocation.CompoundingMultiple > t.CompoundingMultiple {
		priorities = append(priorities, PriorityCompounding)
	}
	if risk.ConcentrationPct > t.ConcentrationPct {
		priorities = append(priorities, PriorityConcentration)
	}
	if allocation.EstimatedNewContracts > t.NewContracts {
		priorities = append(priorities, PriorityExpansion)
	}
	return priorities
}

// RecordPerformance attributes a month's realized returns and appends the
// record to the ledger.
func (p *Planner) RecordPerformance(month int, premiumIncome, assignmentProfit, hedgePnL, portfolioValue float64) (strategy.PerformanceRecord, error) {
	record, err := p.tracker.Record(month, premiumIncome, assignmentProfit, hedgePnL, portfolioValue)
	if err != nil {
		return strategy.PerformanceRecord{}, err
	}
	p.ledger.AppendPerformance(record)
	return record, nil
}
