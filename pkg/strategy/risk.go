package strategy

import (
	"fmt"
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// RiskRating is the categorical concentration rating.
type RiskRating string

const (
	RatingConservative RiskRating = "CONSERVATIVE"
	RatingModerate     RiskRating = "MODERATE"
	RatingAggressive   RiskRating = "AGGRESSIVE"
)

// Threshold alert messages.
const (
	AlertConcentration = "CONCENTRATION: Extremely high concentration in underlying"
	AlertVaR           = "VAR: High daily value at risk"
	AlertAssignment    = "ASSIGNMENT: Very high assignment probability"
)

// AlertCode identifies the kind of an alert independently of its message text.
type AlertCode string

const (
	CodeConcentration         AlertCode = "concentration"
	CodeVaR                   AlertCode = "var"
	CodeAssignment            AlertCode = "assignment"
	CodeAssignmentProbability AlertCode = "assignment_probability"
	CodeHedgeRatio            AlertCode = "hedge_ratio"
	CodeConcentrationCeiling  AlertCode = "concentration_ceiling"
	CodeOther                 AlertCode = "other"
)

// AlertCodes lists every alert code.
var AlertCodes = []AlertCode{
	CodeConcentration,
	CodeVaR,
	CodeAssignment,
	CodeAssignmentProbability,
	CodeHedgeRatio,
	CodeConcentrationCeiling,
	CodeOther,
}

// ThresholdAlertCode returns the code of a CheckThresholds alert message.
func ThresholdAlertCode(alert string) AlertCode {
	switch alert {
	case AlertConcentration:
		return CodeConcentration
	case AlertVaR:
		return CodeVaR
	case AlertAssignment:
		return CodeAssignment
	default:
		return CodeOther
	}
}

// RiskSnapshot summarizes portfolio risk for one plan.
//
// VaR95Pct and VaR99Pct follow the formula value*vol*z/value*100, where the
// portfolio value cancels and only volatility remains. The
// Position* fields scale by position size instead; Policy.Risk.VaRBasis picks
// which pair drives the VaR alert.
type RiskSnapshot struct {
	PortfolioValue      float64
	PositionSize        float64
	ConcentrationPct    float64
	DailyVolatilityPct  float64
	VaR95Pct            float64
	VaR99Pct            float64
	PositionVaR95Pct    float64
	PositionVaR99Pct    float64
	VaR95Amount         float64
	VaR99Amount         float64
	MaxDrawdownPct      float64
	AssignmentRiskScore float64
	Rating              RiskRating
	VaRBasis            VaRBasis
	Alerts              []string
}

// AlertVaR95Pct returns the VaR figure selected by the snapshot's basis.
func (s RiskSnapshot) AlertVaR95Pct() float64 {
	if s.VaRBasis == VaRBasisPosition {
		return s.PositionVaR95Pct
	}
	return s.VaR95Pct
}

// RiskEvaluator computes risk snapshots and threshold alerts.
type RiskEvaluator struct {
	calculator
}

// NewRiskEvaluator creates an evaluator for the given parameters and policy.
func NewRiskEvaluator(logger *zap.Logger, params ParameterSet, policy Policy) (*RiskEvaluator, error) {
	c, err := newCalculator(logger, params, policy)
	if err != nil {
		return nil, err
	}
	return &RiskEvaluator{calculator: c}, nil
}

// DailyVolatility converts the annualized IV level to a daily figure.
func (re *RiskEvaluator) DailyVolatility() float64 {
	return re.params.Volatility() / math.Sqrt(constants.TradingDaysPerYear)
}

// Evaluate builds the risk snapshot for a position inside a portfolio and
// attaches its threshold alerts.
func (re *RiskEvaluator) Evaluate(portfolioValue, positionSize float64) (RiskSnapshot, error) {
	if portfolioValue < 0 {
		return RiskSnapshot{}, invalidf("portfolio value cannot be negative, got %.2f", portfolioValue)
	}
	if positionSize < 0 {
		return RiskSnapshot{}, invalidf("position size cannot be negative, got %.2f", positionSize)
	}
	concentration, err := ratio(positionSize, portfolioValue, "concentration")
	if err != nil {
		return RiskSnapshot{}, err
	}

	dailyVol := re.DailyVolatility()
	volVaR95 := portfolioValue * dailyVol * constants.Z95 / portfolioValue
	volVaR99 := portfolioValue * dailyVol * constants.Z99 / portfolioValue

	snapshot := RiskSnapshot{
		PortfolioValue:      portfolioValue,
		PositionSize:        positionSize,
		ConcentrationPct:    mathutil.RoundTo(concentration*constants.PercentageMultiplier, 1),
		DailyVolatilityPct:  mathutil.RoundTo(dailyVol*constants.PercentageMultiplier, 2),
		VaR95Pct:            mathutil.RoundTo(volVaR95*constants.PercentageMultiplier, 2),
		VaR99Pct:            mathutil.RoundTo(volVaR99*constants.PercentageMultiplier, 2),
		PositionVaR95Pct:    mathutil.RoundTo(concentration*dailyVol*constants.Z95*constants.PercentageMultiplier, 2),
		PositionVaR99Pct:    mathutil.RoundTo(concentration*dailyVol*constants.Z99*constants.PercentageMultiplier, 2),
		VaR95Amount:         mathutil.Round(positionSize * dailyVol * constants.Z95),
		VaR99Amount:         mathutil.Round(positionSize * dailyVol * constants.Z99),
		MaxDrawdownPct:      mathutil.RoundTo(concentration*dailyVol*re.policy.Risk.DrawdownHorizonDays*constants.PercentageMultiplier, 1),
		AssignmentRiskScore: math.Min(10, concentration*10),
		Rating:              re.Rate(concentration),
		VaRBasis:            re.policy.Risk.VaRBasis,
	}
	snapshot.Alerts = re.CheckThresholds(snapshot)

	re.logger.Debug("portfolio risk calculated",
		zap.String("op", "strategy.Evaluate"),
		zap.Float64("concentration_pct", snapshot.ConcentrationPct),
		zap.Float64("var95_pct", snapshot.VaR95Pct),
		zap.String("rating", string(snapshot.Rating)),
		zap.Int("alerts", len(snapshot.Alerts)),
	)
	return snapshot, nil
}

// Rate maps a concentration fraction to a rating.
func (re *RiskEvaluator) Rate(concentration float64) RiskRating {
	switch {
	case concentration >= re.policy.Risk.AggressiveConcentration:
		return RatingAggressive
	case concentration >= re.policy.Risk.ModerateConcentration:
		return RatingModerate
	default:
		return RatingConservative
	}
}

// CheckThresholds returns the alerts triggered by snapshot. The three checks
// are independent.
func (re *RiskEvaluator) CheckThresholds(snapshot RiskSnapshot) []string {
	t := re.policy.Risk
	var alerts []string
	if snapshot.ConcentrationPct > t.AlertConcentrationPct {
		alerts = append(alerts, AlertConcentration)
	}
	if snapshot.AlertVaR95Pct() > t.AlertVaR95Pct {
		alerts = append(alerts, AlertVaR)
	}
	if snapshot.AssignmentRiskScore > t.AlertAssignmentScore {
		alerts = append(alerts, AlertAssignment)
	}
	return alerts
}

// PositionKind identifies the instrument of a held position.
type PositionKind string

const (
	KindPut    PositionKind = "put"
	KindCall   PositionKind = "call"
	KindShares PositionKind = "shares"
)

// Position is one holding supplied to DailyCheck. Short options carry a
// negative Quantity; Value is the signed market value.
type Position struct {
	Symbol   string
	Kind     PositionKind
	Strike   float64
	Quantity int
	Value    float64
}

// AlertLevel grades a daily check alert.
type AlertLevel string

const (
	LevelInfo    AlertLevel = "INFO"
	LevelWarning AlertLevel = "WARNING"
)

// Alert is a daily check finding with a suggested action.
type Alert struct {
	Code           AlertCode
	Level          AlertLevel
	Message        string
	Recommendation string
}

// DailyRiskReport is the result of DailyCheck.
type DailyRiskReport struct {
	PortfolioValue        float64
	AssignmentProbability float64
	HedgeRatio            float64
	Concentration         float64
	RiskScore             float64
	Alerts                []Alert
}

// DailyCheck assesses a set of live positions against the assignment-rate
// ceiling, the minimum hedge ratio and the maximum concentration.
//
// Assignment probability is the contract-weighted mean over short puts. The
// hedge ratio is long call value over short put exposure and is only checked
// when puts are held. Concentration is the share of gross exposure in the
// strategy symbol.
func (re *RiskEvaluator) DailyCheck(positions []Position) (DailyRiskReport, error) {
	sizer := PositionSizer{calculator: re.calculator}

	var report DailyRiskReport
	var putExposure, callValue, gross, inSymbol, probWeighted, contracts float64
	for _, pos := range positions {
		report.PortfolioValue += pos.Value
		gross += math.Abs(pos.Value)
		if pos.Symbol == re.params.Symbol {
			inSymbol += math.Abs(pos.Value)
		}

		switch pos.Kind {
		case KindPut:
			if pos.Quantity >= 0 {
				continue
			}
			prob, err := sizer.AssignmentProbabilityAt(pos.Strike)
			if err != nil {
				return DailyRiskReport{}, fmt.Errorf("position %s put %.2f: %w", pos.Symbol, pos.Strike, err)
			}
			n := math.Abs(float64(pos.Quantity))
			probWeighted += prob * n
			contracts += n
			putExposure += math.Abs(pos.Value)
		case KindCall:
			if pos.Quantity > 0 {
				callValue += math.Abs(pos.Value)
			}
		case KindShares:
		default:
			return DailyRiskReport{}, invalidf("position %s: unknown kind %q", pos.Symbol, pos.Kind)
		}
	}

	if contracts > 0 {
		report.AssignmentProbability = probWeighted / contracts
	}
	if gross > 0 {
		report.Concentration = inSymbol / gross
	}
	report.RiskScore = math.Min(10, report.Concentration*10)

	if report.AssignmentProbability > re.policy.Risk.MaxAssignmentRate {
		report.Alerts = append(report.Alerts, Alert{
			Code:           CodeAssignmentProbability,
			Level:          LevelInfo,
			Message:        fmt.Sprintf("High assignment probability: %.1f%%", report.AssignmentProbability*100),
			Recommendation: "Prepare capital for assignments",
		})
	}
	if putExposure > 0 {
		report.HedgeRatio = callValue / putExposure
		if report.HedgeRatio < re.params.MinHedgeRatio {
			report.Alerts = append(report.Alerts, Alert{
				Code:           CodeHedgeRatio,
				Level:          LevelWarning,
				Message:        fmt.Sprintf("Low hedge ratio: %.1f%%", report.HedgeRatio*100),
				Recommendation: "Increase call hedge positions",
			})
		}
	}
	if report.Concentration > re.params.MaxConcentration {
		report.Alerts = append(report.Alerts, Alert{
			Code:           CodeConcentrationCeiling,
			Level:          LevelWarning,
			Message:        fmt.Sprintf("Concentration %.1f%% above ceiling %.1f%%", report.Concentration*100, re.params.MaxConcentration*100),
			Recommendation: "Reduce exposure to " + re.params.Symbol,
		})
	}

	re.logger.Debug("daily risk check completed",
		zap.String("op", "strategy.DailyCheck"),
		zap.Int("positions", len(positions)),
		zap.Float64("hedge_ratio", report.HedgeRatio),
		zap.Int("alerts", len(report.Alerts)),
	)
	return report, nil
}
