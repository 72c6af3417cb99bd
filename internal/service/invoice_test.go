package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/propbase/billing/internal/domain/charge"
	"github.com/propbase/billing/internal/domain/invoice"
	"github.com/propbase/billing/internal/domain/lease"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/testutil"
	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(s.serviceParams())
}

func (s *InvoiceServiceSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		Cache:          s.GetCache(),
		LeaseRepo:      s.GetStores().LeaseRepo,
		ChargeRepo:     s.GetStores().ChargeRepo,
		ChargeTypeRepo: s.GetStores().ChargeTypeRepo,
		RatePlanRepo:   s.GetStores().RatePlanRepo,
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		InvoiceRunRepo: s.GetStores().InvoiceRunRepo,
		CreditNoteRepo: s.GetStores().CreditNoteRepo,
		SequenceRepo:   s.GetStores().SequenceRepo,
	}
}

// seedRentChargeType registers the default charge type rent lines attribute to
func (s *InvoiceServiceSuite) seedRentChargeType() {
	err := s.GetStores().ChargeTypeRepo.(*testutil.InMemoryChargeTypeStore).CreateChargeType(s.GetContext(), &charge.ChargeType{
		ID:             "ct_rent",
		Code:           "RENT",
		Name:           "Rent",
		TaxRatePercent: decimal.Zero,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	})
	s.NoError(err)
}

func (s *InvoiceServiceSuite) seedLease(id string, status types.LeaseStatus, monthlyRent decimal.Decimal) {
	l := &lease.Lease{
		ID:          id,
		UnitID:      "unit_" + id,
		LeaseStatus: status,
		StartDate:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Terms: []*lease.LeaseTerm{
			{
				ID:            "term_" + id,
				LeaseID:       id,
				EffectiveFrom: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
				MonthlyRent:   monthlyRent,
			},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	err := s.GetStores().LeaseRepo.(*testutil.InMemoryLeaseStore).CreateLease(s.GetContext(), l)
	s.NoError(err)
}

func (s *InvoiceServiceSuite) seedParkingCharge(leaseID string) {
	err := s.GetStores().ChargeTypeRepo.(*testutil.InMemoryChargeTypeStore).CreateChargeType(s.GetContext(), &charge.ChargeType{
		ID:             "ct_parking",
		Code:           "PARKING",
		Name:           "Parking",
		TaxRatePercent: decimal.NewFromInt(18),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	})
	s.NoError(err)

	err = s.GetStores().ChargeRepo.(*testutil.InMemoryChargeStore).CreateCharge(s.GetContext(), &charge.RecurringCharge{
		ID:           "rc_parking",
		LeaseID:      leaseID,
		ChargeTypeID: "ct_parking",
		Amount:       decimal.NewFromInt(1500),
		Frequency:    types.ChargeFrequencyMonthly,
		StartDate:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})
	s.NoError(err)
}

func (s *InvoiceServiceSuite) generate(leaseID string) (*invoice.Invoice, error) {
	return s.service.GenerateInvoice(s.GetContext(), GenerateInvoiceRequest{
		LeaseID:     leaseID,
		PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceWithRentAndCharges() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))
	s.seedParkingCharge("lease_1")

	inv, err := s.generate("lease_1")
	s.NoError(err)
	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
	s.Regexp(regexp.MustCompile(`^INV-\d{6}-\d{6}$`), inv.InvoiceNumber)
	s.Len(inv.LineItems, 2)

	// Rent line first, then recurring charges, line numbers strictly increasing
	s.Equal(1, inv.LineItems[0].LineNumber)
	s.Equal("ct_rent", inv.LineItems[0].ChargeTypeID)
	s.True(inv.LineItems[0].Amount.Equal(decimal.NewFromInt(10000)))
	s.True(inv.LineItems[0].TaxAmount.IsZero())

	s.Equal(2, inv.LineItems[1].LineNumber)
	s.Equal("ct_parking", inv.LineItems[1].ChargeTypeID)
	s.True(inv.LineItems[1].Amount.Equal(decimal.NewFromInt(1500)))
	s.True(inv.LineItems[1].TaxAmount.Equal(decimal.NewFromInt(270)), "got %s", inv.LineItems[1].TaxAmount)

	s.True(inv.SubTotal.Equal(decimal.NewFromInt(11500)))
	s.True(inv.TaxAmount.Equal(decimal.NewFromInt(270)))
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(11770)), "got %s", inv.TotalAmount)
	s.True(inv.BalanceAmount.Equal(inv.TotalAmount))
}

func (s *InvoiceServiceSuite) TestGenerateIsIdempotentPerPeriod() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	first, err := s.generate("lease_1")
	s.NoError(err)
	second, err := s.generate("lease_1")
	s.NoError(err)

	// Same draft updated in place; the number is never reassigned
	s.Equal(first.ID, second.ID)
	s.Equal(first.InvoiceNumber, second.InvoiceNumber)

	stored, err := s.GetStores().InvoiceRepo.GetWithLineItems(s.GetContext(), first.ID)
	s.NoError(err)
	s.Len(stored.LineItems, 1)
}

func (s *InvoiceServiceSuite) TestGenerateSeparatePeriodsGetSeparateInvoices() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	january, err := s.generate("lease_1")
	s.NoError(err)

	february, err := s.service.GenerateInvoice(s.GetContext(), GenerateInvoiceRequest{
		LeaseID:     "lease_1",
		PeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	})
	s.NoError(err)

	s.NotEqual(january.ID, february.ID)
	s.NotEqual(january.InvoiceNumber, february.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestGenerateInactiveLeaseRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusTerminated, decimal.NewFromInt(10000))

	_, err := s.generate("lease_1")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestGenerateMissingRentChargeTypeFailsLoudly() {
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	_, err := s.generate("lease_1")
	s.Error(err)
	s.True(ierr.IsConfiguration(err))
}

func (s *InvoiceServiceSuite) TestGenerateSkipsLineWithUnknownChargeType() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	// Recurring charge pointing at a charge type that was never configured
	err := s.GetStores().ChargeRepo.(*testutil.InMemoryChargeStore).CreateCharge(s.GetContext(), &charge.RecurringCharge{
		ID:           "rc_orphan",
		LeaseID:      "lease_1",
		ChargeTypeID: "ct_missing",
		Amount:       decimal.NewFromInt(900),
		Frequency:    types.ChargeFrequencyMonthly,
		StartDate:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	})
	s.NoError(err)

	inv, err := s.generate("lease_1")
	s.NoError(err)
	s.Len(inv.LineItems, 1)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(10000)))
}

func (s *InvoiceServiceSuite) TestIssueInvoice() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)

	issued, err := s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusIssued, issued.InvoiceStatus)
	s.NotNil(issued.IssuedAt)
}

func (s *InvoiceServiceSuite) TestIssueInvoiceTwiceRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestIssueZeroTotalRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.Zero)

	inv, err := s.generate("lease_1")
	s.NoError(err)

	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestVoidIssuedInvoice() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	voided, err := s.service.VoidInvoice(s.GetContext(), inv.ID, "billed in error")
	s.NoError(err)
	s.Equal(types.InvoiceStatusVoided, voided.InvoiceStatus)
	s.Equal("billed in error", voided.VoidReason)
	s.NotNil(voided.VoidedAt)
}

func (s *InvoiceServiceSuite) TestVoidRequiresReason() {
	_, err := s.service.VoidInvoice(s.GetContext(), "inv_any", "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestVoidDraftRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)

	_, err = s.service.VoidInvoice(s.GetContext(), inv.ID, "change of mind")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestVoidPaidInvoiceRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	_, err = s.service.RecordPayment(s.GetContext(), inv.ID, decimal.NewFromInt(4000))
	s.NoError(err)

	_, err = s.service.VoidInvoice(s.GetContext(), inv.ID, "billed in error")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestVoidVoidedInvoiceRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	_, err = s.service.VoidInvoice(s.GetContext(), inv.ID, "billed in error")
	s.NoError(err)

	_, err = s.service.VoidInvoice(s.GetContext(), inv.ID, "again")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestStaleVersionWriteRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)

	stale, err := s.GetStores().InvoiceRepo.GetWithLineItems(s.GetContext(), inv.ID)
	s.NoError(err)

	// Issuing through the service advances the stored version past the
	// snapshot's.
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	stale.VoidReason = "written from a stale copy"
	err = s.GetStores().InvoiceRepo.Update(s.GetContext(), stale)
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))
}

func (s *InvoiceServiceSuite) TestRecordPartialThenFullPayment() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	partial, err := s.service.RecordPayment(s.GetContext(), inv.ID, decimal.NewFromInt(4000))
	s.NoError(err)
	s.Equal(types.InvoiceStatusPartiallyPaid, partial.InvoiceStatus)
	s.True(partial.BalanceAmount.Equal(decimal.NewFromInt(6000)))
	s.Nil(partial.PaidAt)

	paid, err := s.service.RecordPayment(s.GetContext(), inv.ID, decimal.NewFromInt(6000))
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, paid.InvoiceStatus)
	s.True(paid.BalanceAmount.IsZero())
	s.NotNil(paid.PaidAt)
}

func (s *InvoiceServiceSuite) TestPaymentExceedingBalanceRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	_, err = s.service.RecordPayment(s.GetContext(), inv.ID, decimal.NewFromInt(10001))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestPaymentOnDraftRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)

	_, err = s.service.RecordPayment(s.GetContext(), inv.ID, decimal.NewFromInt(100))
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkOverdue() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	overdue, err := s.service.MarkOverdue(s.GetContext(), inv.ID, inv.DueDate.AddDate(0, 0, 1))
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, overdue.InvoiceStatus)

	// Overdue invoices still accept payments
	paid, err := s.service.RecordPayment(s.GetContext(), inv.ID, overdue.BalanceAmount)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, paid.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestMarkOverdueBeforeDueDateRejected() {
	s.seedRentChargeType()
	s.seedLease("lease_1", types.LeaseStatusActive, decimal.NewFromInt(10000))

	inv, err := s.generate("lease_1")
	s.NoError(err)
	_, err = s.service.IssueInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	_, err = s.service.MarkOverdue(s.GetContext(), inv.ID, inv.DueDate)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestGetInvoiceNotFound() {
	_, err := s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
