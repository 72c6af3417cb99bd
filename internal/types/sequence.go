package types

// SequenceType identifies an externally owned number sequence. Each
// (organization, sequence type) pair has its own monotonically increasing
// counter; atomicity is entirely the sequence repository's concern.
type SequenceType string

const (
	SequenceTypeInvoice    SequenceType = "invoice"
	SequenceTypeCreditNote SequenceType = "credit_note"
)

func (t SequenceType) String() string {
	return string(t)
}
