package types

import (
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/samber/lo"
)

// InvoiceRunStatus is the aggregate outcome of a batch invoice run
type InvoiceRunStatus string

const (
	InvoiceRunStatusPending    InvoiceRunStatus = "PENDING"
	InvoiceRunStatusInProgress InvoiceRunStatus = "IN_PROGRESS"
	// InvoiceRunStatusCompleted means every attempted lease succeeded
	InvoiceRunStatusCompleted InvoiceRunStatus = "COMPLETED"
	// InvoiceRunStatusCompletedWithErrors means some leases succeeded and some failed
	InvoiceRunStatusCompletedWithErrors InvoiceRunStatus = "COMPLETED_WITH_ERRORS"
	// InvoiceRunStatusFailed means every attempted lease failed
	InvoiceRunStatusFailed InvoiceRunStatus = "FAILED"
	// InvoiceRunStatusCancelled means the run was cancelled mid-flight; items
	// completed before cancellation are still recorded
	InvoiceRunStatusCancelled InvoiceRunStatus = "CANCELLED"
)

func (s InvoiceRunStatus) String() string {
	return string(s)
}

func (s InvoiceRunStatus) Validate() error {
	allowed := []InvoiceRunStatus{
		InvoiceRunStatusPending,
		InvoiceRunStatusInProgress,
		InvoiceRunStatusCompleted,
		InvoiceRunStatusCompletedWithErrors,
		InvoiceRunStatusFailed,
		InvoiceRunStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice run status").
			WithHint("Please provide a valid invoice run status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceRunType is the kind of billing a run performs
type InvoiceRunType string

const (
	InvoiceRunTypeMonthlyRent InvoiceRunType = "MONTHLY_RENT"
	InvoiceRunTypeUtility     InvoiceRunType = "UTILITY"
)

func (t InvoiceRunType) String() string {
	return string(t)
}
