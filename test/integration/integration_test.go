package integration

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/premium-forecast/internal/config"
	"github.com/iwvelando/premium-forecast/internal/planner"
	"github.com/iwvelando/premium-forecast/pkg/output"
	"github.com/iwvelando/premium-forecast/pkg/testutil"
	"go.uber.org/zap"
)

const tolerance = 1e-6

var fixedNow = time.Date(2025, time.October, 1, 9, 30, 0, 0, time.UTC)

func loadForecasts(t *testing.T, path string) (*config.Configuration, []planner.Forecast) {
	t.Helper()

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration(%s) error = %v", path, err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	results, err := planner.GetForecastsWithTime(zap.NewNop(), *conf, fixedNow)
	if err != nil {
		t.Fatalf("GetForecastsWithTime() error = %v", err)
	}
	return conf, results
}

// TestExampleConfigurationBaseline runs the shipped example configuration end
// to end and checks the figures of the first and last plan.
func TestExampleConfigurationBaseline(t *testing.T) {
	_, results := loadForecasts(t, "../../config.yaml.example")

	if len(results) != 2 {
		t.Fatalf("Expected 2 active scenarios, got %d", len(results))
	}

	base := testutil.FindForecast(results, "Base")
	if base == nil {
		t.Fatalf("Base scenario missing")
	}
	if len(base.Plans) != 6 {
		t.Fatalf("Expected 6 plans, got %d", len(base.Plans))
	}

	first := testutil.FindPlan(base, 1)
	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"premium", first.PremiumCollected, 1000},
		{"portfolio", first.PortfolioValue, 25000},
		{"put allocation", first.Allocation.PutAllocation, 700},
		{"call allocation", first.Allocation.CallAllocation, 300},
		{"total put capital", first.Allocation.TotalPutCapital, 4700},
		{"compounding multiple", first.Allocation.CompoundingMultiple, 1.175},
		{"concentration", first.Risk.ConcentrationPct, 80.0},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.expected) > tolerance {
			t.Errorf("month 1 %s: expected %.4f, got %.4f", c.name, c.expected, c.got)
		}
	}
	if first.Label != "2025-10" {
		t.Errorf("Expected month 1 label 2025-10, got %s", first.Label)
	}

	last := testutil.FindPlan(base, 6)
	if last.Label != "2026-03" {
		t.Errorf("Expected month 6 label 2026-03, got %s", last.Label)
	}
	if expected := 1000 * math.Pow(1.15, 5); math.Abs(last.PremiumCollected-expected) > tolerance {
		t.Errorf("Expected month 6 premium %.4f, got %.4f", expected, last.PremiumCollected)
	}
	if last.PortfolioValue != 50000 {
		t.Errorf("Expected month 6 portfolio 50000, got %.2f", last.PortfolioValue)
	}

	crush := testutil.FindForecast(results, "Volatility crush")
	if crush == nil {
		t.Fatalf("Volatility crush scenario missing")
	}
	if got := testutil.FindPlan(crush, 1).Allocation.TotalPutCapital; math.Abs(got-4420) > tolerance {
		t.Errorf("Expected volatility crush put capital 4420, got %.4f", got)
	}
	if crush.Plans[0].Sizing.KellyFraction <= base.Plans[0].Sizing.KellyFraction {
		t.Errorf("Lower IV should raise the Kelly fraction: base %.4f, crush %.4f",
			base.Plans[0].Sizing.KellyFraction, crush.Plans[0].Sizing.KellyFraction)
	}

	if testutil.FindForecast(results, "Full reinvestment") != nil {
		t.Errorf("Inactive scenario should not be forecast")
	}
}

// TestPlanConsistency checks relationships every plan must satisfy.
func TestPlanConsistency(t *testing.T) {
	for _, path := range []string{"../../config.yaml.example", "../test_config.yaml"} {
		_, results := loadForecasts(t, path)

		for _, result := range results {
			for _, plan := range result.Plans {
				alloc := plan.Allocation
				if alloc.PutAllocation+alloc.CallAllocation > plan.PremiumCollected+tolerance {
					t.Errorf("%s month %d: allocations exceed premium", result.Name, plan.Month)
				}
				if alloc.TotalPutCapital < alloc.PutAllocation {
					t.Errorf("%s month %d: total put capital below put allocation", result.Name, plan.Month)
				}

				var strikeCapital float64
				for i, strike := range plan.Strikes {
					strikeCapital += strike.CapitalAllocation
					if i > 0 && strike.Strike < plan.Strikes[i-1].Strike {
						t.Errorf("%s month %d: strikes not ascending", result.Name, plan.Month)
					}
					if strike.AssignmentProbability < 0 || strike.AssignmentProbability > 1 {
						t.Errorf("%s month %d: assignment probability %.4f out of range",
							result.Name, plan.Month, strike.AssignmentProbability)
					}
				}
				if math.Abs(strikeCapital-alloc.TotalPutCapital) > 1e-4 {
					t.Errorf("%s month %d: strike capital %.4f does not sum to %.4f",
						result.Name, plan.Month, strikeCapital, alloc.TotalPutCapital)
				}

				var hedgeBudget float64
				for _, tier := range plan.Hedge {
					hedgeBudget += tier.Budget
					for _, sc := range tier.Contracts {
						if sc.TotalCost > tier.AllocationPerStrike+tolerance {
							t.Errorf("%s month %d: %s strike %.2f overspends", result.Name, plan.Month, tier.Tier, sc.Strike)
						}
					}
				}
				if math.Abs(hedgeBudget-alloc.CallAllocation) > 1e-4 {
					t.Errorf("%s month %d: hedge budget %.4f does not match call allocation %.4f",
						result.Name, plan.Month, hedgeBudget, alloc.CallAllocation)
				}

				if !plan.GeneratedAt.Equal(fixedNow) {
					t.Errorf("%s month %d: unexpected generation time %v", result.Name, plan.Month, plan.GeneratedAt)
				}
			}
		}
	}
}

// TestCSVOutputFormat checks the CSV rendering of a full run.
func TestCSVOutputFormat(t *testing.T) {
	_, results := loadForecasts(t, "../test_config.yaml")

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, results); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output is not parseable: %v", err)
	}

	expectedRows := 1
	for _, result := range results {
		expectedRows += len(result.Plans)
	}
	if len(records) != expectedRows {
		t.Fatalf("Expected %d CSV records, got %d", expectedRows, len(records))
	}
	for i, record := range records {
		if len(record) != len(records[0]) {
			t.Errorf("record %d has %d columns, header has %d", i, len(record), len(records[0]))
		}
	}
	if records[1][0] != "current path" || records[1][2] != "2025-01" {
		t.Errorf("Unexpected first data row: %v", records[1])
	}
}

// TestPrettyOutputFormat checks the human readable rendering of a full run.
func TestPrettyOutputFormat(t *testing.T) {
	_, results := loadForecasts(t, "../test_config.yaml")

	var buf bytes.Buffer
	output.PrettyFormat(&buf, results)
	out := buf.String()

	for _, name := range []string{"current path", "low volatility"} {
		if !strings.Contains(out, name) {
			t.Errorf("Pretty output missing scenario %s", name)
		}
	}
	if strings.Contains(out, "disabled") {
		t.Errorf("Pretty output contains the inactive scenario")
	}
}

// TestLedgerAccumulatesAcrossRun checks that a planner's ledger holds one
// allocation per generated plan and exports without mutation.
func TestLedgerAccumulatesAcrossRun(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	resolved, err := conf.Resolve(conf.ActiveScenarios()[0])
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	p, err := planner.New(zap.NewNop(), resolved.Parameters, resolved.Policy, planner.Options{
		Scenario:  resolved.Name,
		StartDate: resolved.Simulation.StartDate,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := p.RunWithTime(resolved.Simulation, fixedNow)
	if err != nil {
		t.Fatalf("RunWithTime() error = %v", err)
	}
	if _, err := p.RecordPerformance(1, 1000, 500, -200, 25000); err != nil {
		t.Fatalf("RecordPerformance() error = %v", err)
	}

	export, err := p.Export(resolved.Simulation.ProjectionMonths)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(export.CompoundingHistory) != len(result.Plans) {
		t.Errorf("Expected %d allocations, got %d", len(result.Plans), len(export.CompoundingHistory))
	}
	if len(export.PerformanceHistory) != 1 {
		t.Errorf("Expected 1 performance record, got %d", len(export.PerformanceHistory))
	}
	if len(export.PremiumProjections) != resolved.Simulation.ProjectionMonths {
		t.Errorf("Expected %d projection rows, got %d", resolved.Simulation.ProjectionMonths, len(export.PremiumProjections))
	}

	again, err := p.Export(resolved.Simulation.ProjectionMonths)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(again.CompoundingHistory) != len(export.CompoundingHistory) {
		t.Errorf("Export mutated the ledger")
	}
}
