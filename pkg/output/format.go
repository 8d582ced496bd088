// Package output provides utilities for formatting and displaying plan results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/premium-forecast/internal/planner"
	"github.com/iwvelando/premium-forecast/pkg/format"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var planHeader = []string{
	"scenario", "month", "date", "premium", "portfolio", "total put capital",
	"call budget", "new contracts", "compounding multiple", "position size",
	"risk rating", "concentration %", "var95 %", "alerts", "priorities",
}

// PrettyFormat writes a human-readable rather than machine-readable table of
// every scenario's monthly plans.
func PrettyFormat(w io.Writer, results []planner.Forecast) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		_, _ = fmt.Fprintf(w, "--- Plans for scenario %s ---\n", result.Name)
		_, _ = fmt.Fprintf(w, "Date    | Premium      | Put Capital  | Call Budget | Contracts | Multiple | Rating       | Priorities\n")
		_, _ = fmt.Fprintf(w, "____    | ____________ | ____________ | ___________ | _________ | ________ | ____________ | __________\n")
		for _, plan := range result.Plans {
			_, _ = p.Fprintf(w, "%s | %12s | %12s | %11s | %9d | %8.2f | %-12s | %s\n",
				plan.Label,
				format.Currency(plan.PremiumCollected),
				format.Currency(plan.Allocation.TotalPutCapital),
				format.Currency(plan.Allocation.CallAllocation),
				plan.Allocation.EstimatedNewContracts,
				plan.Allocation.CompoundingMultiple,
				plan.Risk.Rating,
				strings.Join(plan.ExecutionPriority, "; "),
			)
		}
		if len(result.Alerts) > 0 {
			_, _ = fmt.Fprintf(w, "Risk alerts: %d (%s)\n", len(result.Alerts), strings.Join(uniqueAlerts(result.Alerts), "; "))
		}
		if i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes one row per scenario month in comma-separated value format.
func CsvFormat(w io.Writer, results []planner.Forecast) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(planHeader); err != nil {
		return err
	}
	for _, result := range results {
		for _, plan := range result.Plans {
			if err := cw.Write(planRecord(result.Name, plan)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvString returns the CsvFormat output as a string.
func CsvString(results []planner.Forecast) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, results); err != nil {
		return ""
	}
	return buf.String()
}

func planRecord(scenario string, plan planner.MonthlyPlan) []string {
	return []string{
		scenario,
		strconv.Itoa(plan.Month),
		plan.Label,
		money(plan.PremiumCollected),
		money(plan.PortfolioValue),
		money(plan.Allocation.TotalPutCapital),
		money(plan.Allocation.CallAllocation),
		strconv.Itoa(plan.Allocation.EstimatedNewContracts),
		strconv.FormatFloat(plan.Allocation.CompoundingMultiple, 'f', 4, 64),
		money(plan.Sizing.PositionSize),
		string(plan.Risk.Rating),
		strconv.FormatFloat(plan.Risk.ConcentrationPct, 'f', 1, 64),
		strconv.FormatFloat(plan.Risk.AlertVaR95Pct(), 'f', 2, 64),
		strings.Join(plan.Risk.Alerts, "; "),
		strings.Join(plan.ExecutionPriority, "; "),
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// uniqueAlerts collapses the ledger's repeated alerts for display, keeping
// first-seen order.
func uniqueAlerts(alerts []string) []string {
	seen := make(map[string]bool, len(alerts))
	var out []string
	for _, a := range alerts {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

// ProjectionPretty writes the premium growth projection as a table.
func ProjectionPretty(w io.Writer, rows []strategy.ProjectionRow) {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "Month | Premium     | Put Capital  | Call Budget | Contracts | Multiple | Growth\n")
	_, _ = fmt.Fprintf(w, "_____ | ___________ | ____________ | ___________ | _________ | ________ | ______\n")
	for _, row := range rows {
		_, _ = p.Fprintf(w, "%5d | %11s | %12s | %11s | %9d | %8.2f | %s\n",
			row.Month,
			format.Currency(row.MonthlyPremium),
			format.Currency(row.PutCapital),
			format.Currency(row.CallBudget),
			row.NewContracts,
			row.CompoundingMultiple,
			format.Percent(row.GrowthRate, 1),
		)
	}
}

// ProjectionCSV writes the premium growth projection in comma-separated value format.
func ProjectionCSV(w io.Writer, rows []strategy.ProjectionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"month", "premium", "put capital", "call budget", "new contracts", "compounding multiple", "growth rate %"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Month),
			money(row.MonthlyPremium),
			money(row.PutCapital),
			money(row.CallBudget),
			strconv.Itoa(row.NewContracts),
			strconv.FormatFloat(row.CompoundingMultiple, 'f', 2, 64),
			strconv.FormatFloat(row.GrowthRate, 'f', 1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
