package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
)

// NumberGeneratorService formats document numbers from the externally owned
// atomic sequence counters. The format `{PREFIX}-{YYYYMM}-{NNNNNN}` is part
// of the externally visible contract. No locking happens here; atomicity is
// entirely the sequence repository's concern.
type NumberGeneratorService interface {
	// NextInvoiceNumber returns the next invoice number for the organization
	// in the context. A blank prefix falls back to the configured default.
	NextInvoiceNumber(ctx context.Context, prefix string) (string, error)

	// NextCreditNoteNumber returns the next credit note number for the
	// organization in the context. A blank prefix falls back to the
	// configured default.
	NextCreditNoteNumber(ctx context.Context, prefix string) (string, error)
}

type numberGeneratorService struct {
	ServiceParams
}

func NewNumberGeneratorService(params ServiceParams) NumberGeneratorService {
	return &numberGeneratorService{
		ServiceParams: params,
	}
}

func (s *numberGeneratorService) NextInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	return s.next(ctx, prefix, s.Config.Billing.InvoiceNumberPrefix, types.SequenceTypeInvoice)
}

func (s *numberGeneratorService) NextCreditNoteNumber(ctx context.Context, prefix string) (string, error) {
	return s.next(ctx, prefix, s.Config.Billing.CreditNoteNumberPrefix, types.SequenceTypeCreditNote)
}

func (s *numberGeneratorService) next(ctx context.Context, prefix, defaultPrefix string, seqType types.SequenceType) (string, error) {
	if err := types.ValidateOrganizationContext(ctx); err != nil {
		return "", ierr.WithError(err).
			WithHint("An organization scope is required to generate document numbers").
			Mark(ierr.ErrValidation)
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}

	orgID := types.GetOrganizationID(ctx)
	seq, err := s.SequenceRepo.NextValue(ctx, orgID, seqType)
	if err != nil {
		return "", err
	}

	yearMonth := time.Now().UTC().Format("200601")
	return fmt.Sprintf("%s-%s-%06d", prefix, yearMonth, seq), nil
}
