package types

import (
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/samber/lo"
)

// LeaseStatus represents the lifecycle state of a lease. Leases are managed
// externally; this core only reads them and bills the active ones.
type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "DRAFT"
	LeaseStatusActive     LeaseStatus = "ACTIVE"
	LeaseStatusExpired    LeaseStatus = "EXPIRED"
	LeaseStatusTerminated LeaseStatus = "TERMINATED"
)

func (s LeaseStatus) String() string {
	return string(s)
}

func (s LeaseStatus) Validate() error {
	allowed := []LeaseStatus{
		LeaseStatusDraft,
		LeaseStatusActive,
		LeaseStatusExpired,
		LeaseStatusTerminated,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid lease status").
			WithHint("Please provide a valid lease status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
