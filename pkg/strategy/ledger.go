package strategy

// Ledger is a caller-owned, append-only record of allocations, risk alerts and
// performance records. Entries keep insertion order and are never removed.
// A Ledger is not safe for concurrent use; give each planner its own.
type Ledger struct {
	allocations []AllocationPlan
	alerts      []string
	performance []PerformanceRecord
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AppendAllocation records a monthly allocation.
func (l *Ledger) AppendAllocation(plan AllocationPlan) {
	l.allocations = append(l.allocations, plan)
}

// AppendAlerts records risk alerts without deduplication.
func (l *Ledger) AppendAlerts(alerts ...string) {
	l.alerts = append(l.alerts, alerts...)
}

// AppendPerformance records a performance record.
func (l *Ledger) AppendPerformance(record PerformanceRecord) {
	l.performance = append(l.performance, record)
}

// Allocations returns a copy of the allocation history.
func (l *Ledger) Allocations() []AllocationPlan {
	return append([]AllocationPlan(nil), l.allocations...)
}

// Alerts returns a copy of the alert log.
func (l *Ledger) Alerts() []string {
	return append([]string(nil), l.alerts...)
}

// Performance returns a copy of the performance history.
func (l *Ledger) Performance() []PerformanceRecord {
	return append([]PerformanceRecord(nil), l.performance...)
}

// Len returns the total number of entries across all logs.
func (l *Ledger) Len() int {
	return len(l.allocations) + len(l.alerts) + len(l.performance)
}
