package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerAppendOnly(t *testing.T) {
	ledger := NewLedger()
	assert.Equal(t, 0, ledger.Len())

	ledger.AppendAllocation(AllocationPlan{Month: 1})
	ledger.AppendAllocation(AllocationPlan{Month: 2})
	ledger.AppendAlerts(AlertVaR, AlertVaR)
	ledger.AppendAlerts()
	ledger.AppendPerformance(PerformanceRecord{Month: 1})

	assert.Equal(t, 5, ledger.Len())
	assert.Equal(t, []string{AlertVaR, AlertVaR}, ledger.Alerts())

	allocations := ledger.Allocations()
	assert.Equal(t, 1, allocations[0].Month)
	assert.Equal(t, 2, allocations[1].Month)

	// Returned slices are copies.
	allocations[0].Month = 99
	ledger.Alerts()[0] = "changed"
	assert.Equal(t, 1, ledger.Allocations()[0].Month)
	assert.Equal(t, AlertVaR, ledger.Alerts()[0])
	assert.Len(t, ledger.Performance(), 1)
}
