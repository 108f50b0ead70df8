package domain

// EnrichmentResult is the flattened, category-gated field set that is the
// sole output applied to the persisted record. The populated key set is fully
// determined by Category: invoice fields only for Invoice, summary + ticket
// only for Customer Requests, nothing else otherwise.
type EnrichmentResult struct {
	Category Category `json:"category"`
	Priority Priority `json:"priority"`

	// Invoice fields (Category == Invoice only).
	InvoiceNumber    *string `json:"invoice_number,omitempty"`
	InvoiceDate      *string `json:"invoice_date,omitempty"`
	DueDate          *string `json:"due_date,omitempty"`
	InvoiceAmount    *string `json:"invoice_amount,omitempty"`
	PaymentLink      *string `json:"payment_link,omitempty"`
	BSB              *string `json:"bsb,omitempty"`
	AccountNumber    *string `json:"account_number,omitempty"`
	AccountName      *string `json:"account_name,omitempty"`
	BillerCode       *string `json:"biller_code,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	Description      *string `json:"description,omitempty"`

	// Customer-request fields (Category == Customer Requests only).
	Summary      *string `json:"summary,omitempty"`
	TicketNumber *string `json:"ticket_number,omitempty"`
}

// HasInvoiceFields reports whether any invoice field slot is set (nil-aware,
// a present-but-null slot still counts as set for gating checks).
func (r *EnrichmentResult) HasInvoiceFields() bool {
	for _, v := range []*string{
		r.InvoiceNumber, r.InvoiceDate, r.DueDate, r.InvoiceAmount,
		r.PaymentLink, r.BSB, r.AccountNumber, r.AccountName,
		r.BillerCode, r.PaymentReference, r.Description,
	} {
		if v != nil {
			return true
		}
	}
	return false
}

// HasRequestFields reports whether the customer-request slots carry anything.
func (r *EnrichmentResult) HasRequestFields() bool {
	return r.Summary != nil || r.TicketNumber != nil
}

// =============================================================================
// Outcome: tagged result of one enrichment attempt
// =============================================================================

// OutcomeStatus tags how an enrichment attempt terminated.
type OutcomeStatus int

const (
	// OutcomeSuccess: model path produced the result.
	OutcomeSuccess OutcomeStatus = iota
	// OutcomeDegraded: model path failed, keyword fallback produced
	// category/priority only.
	OutcomeDegraded
	// OutcomeFailed: nothing could be produced (e.g. missing external id).
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one enrichment attempt. The worker
// switches on Status; Err carries the cause for Degraded and Failed.
type Outcome struct {
	Status OutcomeStatus
	Result EnrichmentResult
	Err    error // cause for Degraded/Failed, nil on Success
}

// Success wraps a model-path result.
func Success(r EnrichmentResult) Outcome {
	return Outcome{Status: OutcomeSuccess, Result: r}
}

// Degraded wraps a keyword-fallback result together with the model-path error
// that forced the downgrade.
func Degraded(r EnrichmentResult, err error) Outcome {
	return Outcome{Status: OutcomeDegraded, Result: r, Err: err}
}

// Failed marks an attempt that produced nothing patchable.
func Failed(err error) Outcome {
	return Outcome{Status: OutcomeFailed, Err: err}
}
