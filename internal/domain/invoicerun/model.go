package invoicerun

import (
	"time"

	"github.com/propbase/billing/internal/types"
)

// InvoiceRun records one batch invoice generation across an organization's
// active leases. Created at run start, finalized at run end, never mutated
// afterward.
type InvoiceRun struct {
	ID           string                 `json:"id"`
	RunType      types.InvoiceRunType   `json:"run_type"`
	RunStatus    types.InvoiceRunStatus `json:"run_status"`
	PeriodStart  time.Time              `json:"period_start"`
	PeriodEnd    time.Time              `json:"period_end"`
	TotalLeases  int                    `json:"total_leases"`
	SuccessCount int                    `json:"success_count"`
	FailureCount int                    `json:"failure_count"`
	// ErrorSummary keeps up to the first 10 failure messages for operator triage
	ErrorSummary []string          `json:"error_summary,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Items        []*InvoiceRunItem `json:"items,omitempty"`
	types.BaseModel
}

// InvoiceRunItem is the per-lease outcome of a run. One failure never aborts
// the run; it is recorded here and the run continues.
type InvoiceRunItem struct {
	ID           string  `json:"id"`
	RunID        string  `json:"run_id"`
	LeaseID      string  `json:"lease_id"`
	Succeeded    bool    `json:"succeeded"`
	InvoiceID    *string `json:"invoice_id,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	types.BaseModel
}

// errorSummaryLimit caps how many failure messages the run summary retains.
const errorSummaryLimit = 10

// Finalize derives the aggregate counts and terminal status from the
// collected items and stamps the completion time. Kept as a pure fold over
// items so the aggregation is testable in isolation from I/O.
func (r *InvoiceRun) Finalize(items []*InvoiceRunItem, completedAt time.Time) {
	r.Items = items
	r.TotalLeases = len(items)
	r.SuccessCount = 0
	r.FailureCount = 0
	r.ErrorSummary = nil

	for _, item := range items {
		if item.Succeeded {
			r.SuccessCount++
			continue
		}
		r.FailureCount++
		if len(r.ErrorSummary) < errorSummaryLimit {
			r.ErrorSummary = append(r.ErrorSummary, item.ErrorMessage)
		}
	}

	switch {
	case r.FailureCount == 0:
		r.RunStatus = types.InvoiceRunStatusCompleted
	case r.SuccessCount > 0:
		r.RunStatus = types.InvoiceRunStatusCompletedWithErrors
	default:
		r.RunStatus = types.InvoiceRunStatusFailed
	}

	r.CompletedAt = &completedAt
}

// Cancel records a mid-run cancellation, preserving the items completed
// before the signal. Partial results are valuable for operational diagnosis.
func (r *InvoiceRun) Cancel(items []*InvoiceRunItem, cancelledAt time.Time) {
	r.Finalize(items, cancelledAt)
	r.RunStatus = types.InvoiceRunStatusCancelled
}
