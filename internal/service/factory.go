package service

import (
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
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Repositories
	LeaseRepo      lease.Repository
	ChargeRepo     charge.Repository
	ChargeTypeRepo charge.ChargeTypeRepository
	RatePlanRepo   tariff.Repository
	InvoiceRepo    invoice.Repository
	InvoiceRunRepo invoicerun.Repository
	CreditNoteRepo creditnote.Repository
	SequenceRepo   sequence.Repository
}
