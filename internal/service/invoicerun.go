package service

import (
	"context"
	"fmt"
	"time"

	"github.com/propbase/billing/internal/domain/invoicerun"
	"github.com/propbase/billing/internal/domain/lease"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/propbase/billing/internal/validator"
)

// InvoiceRunService batch-generates invoices for every active lease in the
// organization. Failures are isolated per lease and aggregated into the run,
// never aborting it.
type InvoiceRunService interface {
	// RunMonthlyRent generates a rent invoice per active lease. The run
	// record, with all its per-lease items, is persisted once at the end;
	// cancellation mid-run still persists the items completed so far.
	RunMonthlyRent(ctx context.Context, req InvoiceRunRequest) (*invoicerun.InvoiceRun, error)

	// RunUtility is a placeholder for batch utility billing. It reports a
	// not-supported failure rather than silently doing nothing.
	RunUtility(ctx context.Context, req InvoiceRunRequest) (*invoicerun.InvoiceRun, error)
}

// InvoiceRunRequest asks for one batch run over a billing period.
type InvoiceRunRequest struct {
	PeriodStart     time.Time             `json:"period_start" validate:"required"`
	PeriodEnd       time.Time             `json:"period_end" validate:"required"`
	ProrationMethod types.ProrationMethod `json:"proration_method"`
}

func (r InvoiceRunRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.PeriodEnd.Before(r.PeriodStart) {
		return ierr.NewError("invalid billing period").
			WithHint("Billing period end must not precede its start").
			Mark(ierr.ErrValidation)
	}
	if r.ProrationMethod != "" {
		return r.ProrationMethod.Validate()
	}
	return nil
}

type invoiceRunService struct {
	ServiceParams
	invoiceService InvoiceService
}

func NewInvoiceRunService(params ServiceParams) InvoiceRunService {
	return &invoiceRunService{
		ServiceParams:  params,
		invoiceService: NewInvoiceService(params),
	}
}

func (s *invoiceRunService) RunMonthlyRent(ctx context.Context, req InvoiceRunRequest) (*invoicerun.InvoiceRun, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := types.ValidateOrganizationContext(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("An organization scope is required to run billing").
			Mark(ierr.ErrValidation)
	}

	run := &invoicerun.InvoiceRun{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_RUN),
		RunType:     types.InvoiceRunTypeMonthlyRent,
		RunStatus:   types.InvoiceRunStatusInProgress,
		PeriodStart: types.ToUTCDate(req.PeriodStart),
		PeriodEnd:   types.ToUTCDate(req.PeriodEnd),
		StartedAt:   time.Now().UTC(),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}

	leases, err := s.LeaseRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if len(leases) == 0 {
		run.Finalize(nil, time.Now().UTC())
		if err := s.InvoiceRunRepo.Create(ctx, run); err != nil {
			return nil, err
		}
		s.Logger.Infow("invoice run completed with no active leases", "run_id", run.ID)
		return run, nil
	}

	items := make([]*invoicerun.InvoiceRunItem, 0, len(leases))
	for _, l := range leases {
		// Honor cancellation between leases; whatever finished before the
		// signal is still persisted for diagnosis.
		if ctx.Err() != nil {
			run.Cancel(items, time.Now().UTC())
			if err := s.InvoiceRunRepo.Create(context.WithoutCancel(ctx), run); err != nil {
				return nil, err
			}
			s.Logger.Warnw("invoice run cancelled mid-flight",
				"run_id", run.ID,
				"processed", len(items),
				"total", len(leases))
			return run, nil
		}

		items = append(items, s.processLease(ctx, run, l, req))
	}

	run.Finalize(items, time.Now().UTC())
	if err := s.InvoiceRunRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice run finished",
		"run_id", run.ID,
		"status", run.RunStatus,
		"total_leases", run.TotalLeases,
		"success_count", run.SuccessCount,
		"failure_count", run.FailureCount)

	return run, nil
}

// processLease generates one lease's invoice, converting every failure mode
// (domain errors and panics alike) into a failure item so one lease can
// never take down the run.
func (s *invoiceRunService) processLease(
	ctx context.Context,
	run *invoicerun.InvoiceRun,
	l *lease.Lease,
	req InvoiceRunRequest,
) (item *invoicerun.InvoiceRunItem) {
	item = &invoicerun.InvoiceRunItem{
		ID:        types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RUN_ITEM),
		RunID:     run.ID,
		LeaseID:   l.ID,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}

	defer func() {
		if r := recover(); r != nil {
			item.Succeeded = false
			item.InvoiceID = nil
			item.ErrorMessage = fmt.Sprintf("unexpected failure: %v", r)
			s.Logger.Errorw("panic while generating invoice for lease",
				"run_id", run.ID,
				"lease_id", l.ID,
				"panic", r)
		}
	}()

	inv, err := s.invoiceService.GenerateInvoice(ctx, GenerateInvoiceRequest{
		LeaseID:         l.ID,
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
		ProrationMethod: req.ProrationMethod,
	})
	if err != nil {
		item.Succeeded = false
		item.ErrorMessage = err.Error()
		s.Logger.Warnw("invoice generation failed for lease",
			"run_id", run.ID,
			"lease_id", l.ID,
			"error", err)
		return item
	}

	item.Succeeded = true
	item.InvoiceID = &inv.ID
	return item
}

func (s *invoiceRunService) RunUtility(ctx context.Context, req InvoiceRunRequest) (*invoicerun.InvoiceRun, error) {
	return nil, ierr.NewError("utility invoice runs are not supported").
		WithHint("Batch utility billing has not been implemented yet").
		Mark(ierr.ErrInvalidOperation)
}
