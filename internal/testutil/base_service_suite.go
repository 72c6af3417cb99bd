package testutil

import (
	"context"
	"time"

	"github.com/propbase/billing/internal/cache"
	"github.com/propbase/billing/internal/config"
	"github.com/propbase/billing/internal/domain/charge"
	"github.com/propbase/billing/internal/domain/creditnote"
	"github.com/propbase/billing/internal/domain/invoice"
	"github.com/propbase/billing/internal/domain/invoicerun"
	"github.com/propbase/billing/internal/domain/lease"
	"github.com/propbase/billing/internal/domain/sequence"
	"github.com/propbase/billing/internal/domain/tariff"
	"github.com/propbase/billing/internal/logger"
	"github.com/propbase/billing/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	LeaseRepo      lease.Repository
	ChargeRepo     charge.Repository
	ChargeTypeRepo charge.ChargeTypeRepository
	RatePlanRepo   tariff.Repository
	InvoiceRepo    invoice.Repository
	InvoiceRunRepo invoicerun.Repository
	CreditNoteRepo creditnote.Repository
	SequenceRepo   sequence.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	cache  cache.Cache
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.cache = cache.NewInMemoryCache()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxOrganizationID, types.DefaultOrganizationID)
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		LeaseRepo:      NewInMemoryLeaseStore(),
		ChargeRepo:     NewInMemoryChargeStore(),
		ChargeTypeRepo: NewInMemoryChargeTypeStore(),
		RatePlanRepo:   NewInMemoryRatePlanStore(),
		InvoiceRepo:    NewInMemoryInvoiceStore(),
		InvoiceRunRepo: NewInMemoryInvoiceRunStore(),
		CreditNoteRepo: NewInMemoryCreditNoteStore(),
		SequenceRepo:   NewInMemorySequenceStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.LeaseRepo.(*InMemoryLeaseStore).Clear()
	s.stores.ChargeRepo.(*InMemoryChargeStore).Clear()
	s.stores.ChargeTypeRepo.(*InMemoryChargeTypeStore).Clear()
	s.stores.RatePlanRepo.(*InMemoryRatePlanStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.InvoiceRunRepo.(*InMemoryInvoiceRunStore).Clear()
	s.stores.CreditNoteRepo.(*InMemoryCreditNoteStore).Clear()
	s.stores.SequenceRepo.(*InMemorySequenceStore).Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
