package invoicerun

import (
	"fmt"
	"testing"
	"time"

	"github.com/propbase/billing/internal/types"
	"github.com/stretchr/testify/assert"
)

func item(id string, succeeded bool) *InvoiceRunItem {
	it := &InvoiceRunItem{
		ID:        id,
		RunID:     "run_1",
		LeaseID:   "lease_" + id,
		Succeeded: succeeded,
	}
	if !succeeded {
		it.ErrorMessage = "generation failed for " + id
	}
	return it
}

func TestFinalizeAllSucceeded(t *testing.T) {
	run := &InvoiceRun{ID: "run_1", RunStatus: types.InvoiceRunStatusInProgress}
	completedAt := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

	run.Finalize([]*InvoiceRunItem{item("a", true), item("b", true)}, completedAt)

	assert.Equal(t, types.InvoiceRunStatusCompleted, run.RunStatus)
	assert.Equal(t, 2, run.TotalLeases)
	assert.Equal(t, 2, run.SuccessCount)
	assert.Equal(t, 0, run.FailureCount)
	assert.Empty(t, run.ErrorSummary)
	assert.Equal(t, completedAt, *run.CompletedAt)
}

func TestFinalizeMixedOutcome(t *testing.T) {
	run := &InvoiceRun{ID: "run_1"}

	run.Finalize([]*InvoiceRunItem{item("a", true), item("b", false), item("c", false)}, time.Now().UTC())

	assert.Equal(t, types.InvoiceRunStatusCompletedWithErrors, run.RunStatus)
	assert.Equal(t, 3, run.TotalLeases)
	assert.Equal(t, run.TotalLeases, run.SuccessCount+run.FailureCount)
	assert.Len(t, run.ErrorSummary, 2)
}

func TestFinalizeAllFailed(t *testing.T) {
	run := &InvoiceRun{ID: "run_1"}

	run.Finalize([]*InvoiceRunItem{item("a", false)}, time.Now().UTC())

	assert.Equal(t, types.InvoiceRunStatusFailed, run.RunStatus)
	assert.Equal(t, 0, run.SuccessCount)
	assert.Equal(t, 1, run.FailureCount)
}

func TestFinalizeNoItems(t *testing.T) {
	run := &InvoiceRun{ID: "run_1"}

	run.Finalize(nil, time.Now().UTC())

	assert.Equal(t, types.InvoiceRunStatusCompleted, run.RunStatus)
	assert.Equal(t, 0, run.TotalLeases)
	assert.NotNil(t, run.CompletedAt)
}

func TestFinalizeCapsErrorSummary(t *testing.T) {
	run := &InvoiceRun{ID: "run_1"}

	items := make([]*InvoiceRunItem, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, item(fmt.Sprintf("i%02d", i), false))
	}
	run.Finalize(items, time.Now().UTC())

	assert.Equal(t, 25, run.FailureCount)
	assert.Len(t, run.ErrorSummary, 10)
}

func TestCancelPreservesPartialCounts(t *testing.T) {
	run := &InvoiceRun{ID: "run_1"}

	run.Cancel([]*InvoiceRunItem{item("a", true), item("b", false)}, time.Now().UTC())

	assert.Equal(t, types.InvoiceRunStatusCancelled, run.RunStatus)
	assert.Equal(t, 2, run.TotalLeases)
	assert.Equal(t, 1, run.SuccessCount)
	assert.Equal(t, 1, run.FailureCount)
	assert.NotNil(t, run.CompletedAt)
}
