package service

import (
	"context"
	"time"

	"github.com/propbase/billing/internal/domain/creditnote"
	"github.com/propbase/billing/internal/domain/invoice"
	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/propbase/billing/internal/validator"
	"github.com/shopspring/decimal"
)

// CreditNoteService creates and issues credit notes against issued invoices.
type CreditNoteService interface {
	// CreateCreditNote creates an unissued credit note reversing part of an
	// issued invoice, splitting each requested credit proportionally into
	// pre-tax and tax portions
	CreateCreditNote(ctx context.Context, req CreateCreditNoteRequest) (*creditnote.CreditNote, error)

	// IssueCreditNote applies the credit note. Issuance is terminal and can
	// happen at most once.
	IssueCreditNote(ctx context.Context, id string) (*creditnote.CreditNote, error)

	// GetCreditNote retrieves a credit note with its lines
	GetCreditNote(ctx context.Context, id string) (*creditnote.CreditNote, error)
}

// CreateCreditNoteRequest asks for a credit note against one invoice.
type CreateCreditNoteRequest struct {
	InvoiceID string                  `json:"invoice_id" validate:"required"`
	Reason    string                  `json:"reason"`
	Lines     []CreditNoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreditNoteLineRequest credits part of one invoice line. Amount is the
// positive credit requested, tax inclusive.
type CreditNoteLineRequest struct {
	InvoiceLineItemID string          `json:"invoice_line_item_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount"`
}

func (r CreateCreditNoteRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	for _, line := range r.Lines {
		if !line.Amount.IsPositive() {
			return ierr.NewError("credit amount must be positive").
				WithHintf("credit amount for line %s must be strictly positive", line.InvoiceLineItemID).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

type creditNoteService struct {
	ServiceParams
	numberGen NumberGeneratorService
}

func NewCreditNoteService(params ServiceParams) CreditNoteService {
	return &creditNoteService{
		ServiceParams: params,
		numberGen:     NewNumberGeneratorService(params),
	}
}

func (s *creditNoteService) CreateCreditNote(ctx context.Context, req CreateCreditNoteRequest) (*creditnote.CreditNote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.GetWithLineItems(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	if !inv.InvoiceStatus.IsCreditable() {
		return nil, ierr.NewError("invoice cannot be credited").
			WithHintf("invoice %s has status %s; only issued invoices accept credit notes", inv.ID, inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	note := &creditnote.CreditNote{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_NOTE),
		InvoiceID: inv.ID,
		Reason:    req.Reason,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}

	for _, lineReq := range req.Lines {
		invLine := inv.FindLineItem(lineReq.InvoiceLineItemID)
		if invLine == nil {
			return nil, ierr.NewError("invoice line not found on invoice").
				WithHintf("line %s does not exist on invoice %s", lineReq.InvoiceLineItemID, inv.ID).
				Mark(ierr.ErrValidation)
		}
		if lineReq.Amount.GreaterThan(invLine.TotalAmount) {
			return nil, ierr.NewError("credit amount exceeds invoice line total").
				WithHintf("requested %s exceeds line total %s", lineReq.Amount, invLine.TotalAmount).
				Mark(ierr.ErrValidation)
		}

		note.LineItems = append(note.LineItems, buildCreditLine(ctx, note.ID, invLine, lineReq.Amount))
	}

	note.RecomputeTotal()

	number, err := s.numberGen.NextCreditNoteNumber(ctx, "")
	if err != nil {
		return nil, err
	}
	note.CreditNoteNumber = number

	if err := s.CreditNoteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.Logger.Infow("created credit note",
		"credit_note_id", note.ID,
		"credit_note_number", note.CreditNoteNumber,
		"invoice_id", inv.ID,
		"total_amount", note.TotalAmount)

	return note, nil
}

// buildCreditLine splits the requested credit into pre-tax and tax portions
// in the same ratio the invoice line carries, then stores all three amounts
// negated.
func buildCreditLine(ctx context.Context, noteID string, invLine *invoice.LineItem, requested decimal.Decimal) *creditnote.CreditNoteLine {
	creditTax := decimal.Zero
	if !invLine.TotalAmount.IsZero() {
		creditTax = requested.Mul(invLine.TaxAmount).Div(invLine.TotalAmount).Round(2)
	}
	creditAmount := requested.Sub(creditTax)

	return &creditnote.CreditNoteLine{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_NOTE_LINE),
		CreditNoteID:      noteID,
		InvoiceLineItemID: invLine.ID,
		Description:       invLine.Description,
		Amount:            creditAmount.Neg(),
		TaxAmount:         creditTax.Neg(),
		TotalAmount:       requested.Neg(),
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

func (s *creditNoteService) IssueCreditNote(ctx context.Context, id string) (*creditnote.CreditNote, error) {
	note, err := s.CreditNoteRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	if note.IsApplied() {
		return nil, ierr.NewError("credit note is already issued").
			WithHintf("credit note %s was applied at %s", note.ID, note.AppliedAt).
			Mark(ierr.ErrInvalidOperation)
	}
	if len(note.LineItems) == 0 {
		return nil, ierr.NewError("credit note cannot be issued").
			WithHintf("credit note %s has no lines", note.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	note.AppliedAt = &now
	note.UpdatedAt = now
	note.UpdatedBy = types.GetUserID(ctx)

	if err := s.CreditNoteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	s.Logger.Infow("issued credit note",
		"credit_note_id", note.ID,
		"credit_note_number", note.CreditNoteNumber)

	return note, nil
}

func (s *creditNoteService) GetCreditNote(ctx context.Context, id string) (*creditnote.CreditNote, error) {
	return s.CreditNoteRepo.GetWithLineItems(ctx, id)
}
