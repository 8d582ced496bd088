package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/premium-forecast/internal/planner"
	"github.com/iwvelando/premium-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ScenariosPretty writes each scenario's share accumulation projection,
// appreciation scenarios and assignment plan.
func ScenariosPretty(w io.Writer, results []planner.Forecast) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		_, _ = fmt.Fprintf(w, "--- Share accumulation for scenario %s ---\n", result.Name)
		_, _ = fmt.Fprintf(w, "Month | Premium     | Contracts | Shares  | Cost/Share | Hedge Value | Portfolio\n")
		_, _ = fmt.Fprintf(w, "_____ | ___________ | _________ | _______ | __________ | ___________ | _________\n")
		for _, row := range result.Accumulation {
			_, _ = p.Fprintf(w, "%5d | %11s | %9d | %7s | %10s | %11s | %s\n",
				row.Month,
				format.Currency(row.MonthlyPremium),
				row.TotalContracts,
				format.Count(row.CumulativeShares),
				format.Currency(row.EffectiveCost),
				format.Currency(row.CallHedgeValue),
				format.Currency(row.PortfolioValue),
			)
		}

		if len(result.Appreciation) > 0 {
			_, _ = fmt.Fprintf(w, "\nScenario     | Target  | Multiple | Share Profit  | Hedge Profit  | Total Return\n")
			_, _ = fmt.Fprintf(w, "________     | ______  | ________ | ____________  | ____________  | ____________\n")
			for _, s := range result.Appreciation {
				_, _ = p.Fprintf(w, "%-12s | %7s | %7.1fx | %13s | %13s | %s\n",
					s.Name,
					format.Currency(s.TargetPrice),
					s.PriceMultiple,
					format.Currency(s.ShareProfit),
					format.Currency(s.HedgeProfit),
					format.Currency(s.TotalReturn),
				)
			}
		}

		if a := result.Assignment; a != nil {
			_, _ = fmt.Fprintf(w, "\nAssigned %s shares at %s: unrealized %s (%s); covered call %s for %s/month (%s)\n",
				format.Count(a.AssignedShares),
				format.Currency(a.EffectiveCostBasis),
				format.Currency(a.UnrealizedProfit),
				format.Percent(a.ProfitPct, 1),
				format.Currency(a.CoveredCallStrike),
				format.Currency(a.MonthlyCoveredCall),
				format.Percent(a.MonthlyYieldPct, 2),
			)
		}
		if i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

// ScenariosCSV writes the appreciation scenarios of every forecast in
// comma-separated value format.
func ScenariosCSV(w io.Writer, results []planner.Forecast) error {
	cw := csv.NewWriter(w)
	header := []string{"scenario", "name", "target price", "price multiple", "share value", "share profit", "hedge profit", "total premium", "total return"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, result := range results {
		for _, s := range result.Appreciation {
			record := []string{
				result.Name,
				s.Name,
				money(s.TargetPrice),
				strconv.FormatFloat(s.PriceMultiple, 'f', 4, 64),
				money(s.ShareValue),
				money(s.ShareProfit),
				money(s.HedgeProfit),
				money(s.TotalPremium),
				money(s.TotalReturn),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
