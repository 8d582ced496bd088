package strategy

import (
	"time"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// PerformanceRecord attributes one month of returns to its three sources.
type PerformanceRecord struct {
	Month                 int
	PremiumIncome         float64
	AssignmentProfit      float64
	HedgePnL              float64
	TotalReturn           float64
	PortfolioValue        float64
	ROIPct                float64
	PremiumAttribution    float64
	AssignmentAttribution float64
	HedgeAttribution      float64
	RecordedAt            time.Time
}

// PerformanceTracker builds monthly performance records.
type PerformanceTracker struct {
	logger *zap.Logger
}

// NewPerformanceTracker creates a tracker. It needs no strategy parameters.
func NewPerformanceTracker(logger *zap.Logger) *PerformanceTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceTracker{logger: logger}
}

// Record computes the performance record for a month stamped with the current time.
func (pt *PerformanceTracker) Record(month int, premiumIncome, assignmentProfit, hedgePnL, portfolioValue float64) (PerformanceRecord, error) {
	return pt.RecordWithTime(month, premiumIncome, assignmentProfit, hedgePnL, portfolioValue, time.Now())
}

// RecordWithTime is Record with an injectable timestamp.
//
// Attribution is guarded only for a zero total. A negative total is divided
// as is, so a positive component reports a negative attribution.
func (pt *PerformanceTracker) RecordWithTime(month int, premiumIncome, assignmentProfit, hedgePnL, portfolioValue float64, at time.Time) (PerformanceRecord, error) {
	total := premiumIncome + assignmentProfit + hedgePnL
	roi, err := ratio(total, portfolioValue, "monthly ROI")
	if err != nil {
		return PerformanceRecord{}, err
	}

	record := PerformanceRecord{
		Month:            month,
		PremiumIncome:    premiumIncome,
		AssignmentProfit: assignmentProfit,
		HedgePnL:         hedgePnL,
		TotalReturn:      total,
		PortfolioValue:   portfolioValue,
		ROIPct:           mathutil.RoundTo(roi*constants.PercentageMultiplier, 2),
		RecordedAt:       at,
	}
	if total != 0 {
		record.PremiumAttribution = mathutil.RoundTo(premiumIncome/total*constants.PercentageMultiplier, 1)
		record.AssignmentAttribution = mathutil.RoundTo(assignmentProfit/total*constants.PercentageMultiplier, 1)
		record.HedgeAttribution = mathutil.RoundTo(hedgePnL/total*constants.PercentageMultiplier, 1)
	}

	pt.logger.Debug("monthly performance recorded",
		zap.String("op", "strategy.RecordPerformance"),
		zap.Int("month", month),
		zap.Float64("total_return", total),
		zap.Float64("roi_pct", record.ROIPct),
	)
	return record, nil
}
