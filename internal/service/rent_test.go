package service

import (
	"testing"
	"time"

	"github.com/propbase/billing/internal/domain/lease"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/testutil"
	"github.com/propbase/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RentCalculationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RentCalculationService
}

func TestRentCalculationService(t *testing.T) {
	suite.Run(t, new(RentCalculationServiceSuite))
}

func (s *RentCalculationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRentCalculationService(ServiceParams{
		Logger:    s.GetLogger(),
		Config:    s.GetConfig(),
		Cache:     s.GetCache(),
		LeaseRepo: s.GetStores().LeaseRepo,
	})
}

func (s *RentCalculationServiceSuite) seedLease(terms ...*lease.LeaseTerm) *lease.Lease {
	l := &lease.Lease{
		ID:          "lease_1",
		UnitID:      "unit_1",
		LeaseStatus: types.LeaseStatusActive,
		StartDate:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Terms:       terms,
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	err := s.GetStores().LeaseRepo.(*testutil.InMemoryLeaseStore).CreateLease(s.GetContext(), l)
	s.NoError(err)
	return l
}

func (s *RentCalculationServiceSuite) TestFullPeriodSingleTerm() {
	s.seedLease(&lease.LeaseTerm{
		ID:            "term_1",
		LeaseID:       "lease_1",
		EffectiveFrom: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent:   decimal.NewFromInt(10000),
	})

	result, err := s.service.CalculateRent(s.GetContext(), RentCalculationRequest{
		LeaseID:         "lease_1",
		PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		ProrationMethod: types.ProrationMethodActualDaysInMonth,
	})
	s.NoError(err)
	s.Len(result.Lines, 1)
	s.False(result.Lines[0].IsProrated)
	s.True(result.Lines[0].Amount.Equal(decimal.NewFromInt(10000)), "got %s", result.Lines[0].Amount)
	s.True(result.TotalAmount.Equal(decimal.NewFromInt(10000)))
}

func (s *RentCalculationServiceSuite) TestMidMonthRentChangeSplitsPeriod() {
	// Rent changes on Jan 16: the old term covers 15 of 31 days, the new
	// term the remaining 16.
	s.seedLease(
		&lease.LeaseTerm{
			ID:            "term_old",
			LeaseID:       "lease_1",
			EffectiveFrom: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			EffectiveTo:   lo.ToPtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
			MonthlyRent:   decimal.NewFromInt(10000),
		},
		&lease.LeaseTerm{
			ID:            "term_new",
			LeaseID:       "lease_1",
			EffectiveFrom: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			MonthlyRent:   decimal.NewFromInt(12000),
		},
	)

	result, err := s.service.CalculateRent(s.GetContext(), RentCalculationRequest{
		LeaseID:         "lease_1",
		PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		ProrationMethod: types.ProrationMethodActualDaysInMonth,
	})
	s.NoError(err)
	s.Len(result.Lines, 2)

	s.Equal("term_old", result.Lines[0].LeaseTermID)
	s.True(result.Lines[0].IsProrated)
	s.True(result.Lines[0].Amount.Equal(decimal.RequireFromString("4838.71")), "got %s", result.Lines[0].Amount)

	s.Equal("term_new", result.Lines[1].LeaseTermID)
	s.True(result.Lines[1].IsProrated)
	s.True(result.Lines[1].Amount.Equal(decimal.RequireFromString("6193.55")), "got %s", result.Lines[1].Amount)

	s.True(result.TotalAmount.Equal(decimal.RequireFromString("11032.26")), "got %s", result.TotalAmount)
}

func (s *RentCalculationServiceSuite) TestThirtyDayMonthMethod() {
	// Move-in on Jan 15: 17 of 31 days occupied, billed over a 30 day base.
	s.seedLease(&lease.LeaseTerm{
		ID:            "term_1",
		LeaseID:       "lease_1",
		EffectiveFrom: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		MonthlyRent:   decimal.NewFromInt(10000),
	})

	result, err := s.service.CalculateRent(s.GetContext(), RentCalculationRequest{
		LeaseID:         "lease_1",
		PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		ProrationMethod: types.ProrationMethodThirtyDayMonth,
	})
	s.NoError(err)
	s.Len(result.Lines, 1)
	s.True(result.Lines[0].Amount.Equal(decimal.RequireFromString("5666.67")), "got %s", result.Lines[0].Amount)
}

func (s *RentCalculationServiceSuite) TestNoTermsInPeriod() {
	s.seedLease(&lease.LeaseTerm{
		ID:            "term_1",
		LeaseID:       "lease_1",
		EffectiveFrom: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent:   decimal.NewFromInt(10000),
	})

	result, err := s.service.CalculateRent(s.GetContext(), RentCalculationRequest{
		LeaseID:         "lease_1",
		PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		ProrationMethod: types.ProrationMethodActualDaysInMonth,
	})
	s.NoError(err)
	s.Empty(result.Lines)
	s.True(result.TotalAmount.IsZero())
}

func (s *RentCalculationServiceSuite) TestLeaseNotFound() {
	_, err := s.service.CalculateRent(s.GetContext(), RentCalculationRequest{
		LeaseID:         "lease_missing",
		PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		ProrationMethod: types.ProrationMethodActualDaysInMonth,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RentCalculationServiceSuite) TestInvalidRequest() {
	testCases := []struct {
		name string
		req  RentCalculationRequest
	}{
		{
			name: "missing lease id",
			req: RentCalculationRequest{
				PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				PeriodEnd:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				ProrationMethod: types.ProrationMethodActualDaysInMonth,
			},
		},
		{
			name: "inverted period",
			req: RentCalculationRequest{
				LeaseID:         "lease_1",
				PeriodStart:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				PeriodEnd:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				ProrationMethod: types.ProrationMethodActualDaysInMonth,
			},
		},
		{
			name: "unknown proration method",
			req: RentCalculationRequest{
				LeaseID:         "lease_1",
				PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				PeriodEnd:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				ProrationMethod: types.ProrationMethod("HALF_MONTH"),
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.CalculateRent(s.GetContext(), tc.req)
			s.Error(err)
			s.True(ierr.IsValidation(err))
		})
	}
}
