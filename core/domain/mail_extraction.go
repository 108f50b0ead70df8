package domain

import (
	"github.com/goccy/go-json"
)

// =============================================================================
// Raw extraction shapes returned by the model backend
// =============================================================================

// InvoiceFields is the structured invoice extraction result. Every field is
// independently nullable; nil means the backend (and the regex fallback) had
// nothing for it.
type InvoiceFields struct {
	InvoiceNumber    *string `json:"invoice_number"`
	InvoiceDate      *string `json:"invoice_date"`
	DueDate          *string `json:"due_date"`
	InvoiceAmount    *string `json:"invoice_amount"`
	PaymentLink      *string `json:"payment_link"`
	BSB              *string `json:"bsb"`
	AccountNumber    *string `json:"account_number"`
	AccountName      *string `json:"account_name"`
	BillerCode       *string `json:"biller_code"`
	PaymentReference *string `json:"payment_reference"`
	Description      *string `json:"description"`
}

// CountPresent returns the number of fields carrying a non-empty value.
// Drives the regex-fallback decision (<= 2 populated fields).
func (f *InvoiceFields) CountPresent() int {
	n := 0
	for _, v := range f.fields() {
		if v != nil && *v != nil && **v != "" {
			n++
		}
	}
	return n
}

// MergeMissing fills nil/empty fields from other without ever overwriting a
// populated value.
func (f *InvoiceFields) MergeMissing(other *InvoiceFields) {
	if other == nil {
		return
	}
	dst := f.fields()
	src := other.fields()
	for i := range dst {
		if (*dst[i] == nil || **dst[i] == "") && *src[i] != nil && **src[i] != "" {
			*dst[i] = *src[i]
		}
	}
}

func (f *InvoiceFields) fields() []**string {
	return []**string{
		&f.InvoiceNumber, &f.InvoiceDate, &f.DueDate, &f.InvoiceAmount,
		&f.PaymentLink, &f.BSB, &f.AccountNumber, &f.AccountName,
		&f.BillerCode, &f.PaymentReference, &f.Description,
	}
}

// RequestFields is the structured customer-request summary. Backends are not
// consistent about key names, so decoding accepts summary/overview and
// ticket_number/request_number interchangeably.
type RequestFields struct {
	Summary      string  `json:"summary"`
	TicketNumber *string `json:"ticket_number,omitempty"`
}

// UnmarshalJSON tolerates the alternate key names some models emit.
func (r *RequestFields) UnmarshalJSON(data []byte) error {
	var raw struct {
		Summary       string  `json:"summary"`
		Overview      string  `json:"overview"`
		TicketNumber  *string `json:"ticket_number"`
		RequestNumber *string `json:"request_number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Summary = raw.Summary
	if r.Summary == "" {
		r.Summary = raw.Overview
	}
	r.TicketNumber = raw.TicketNumber
	if r.TicketNumber == nil {
		r.TicketNumber = raw.RequestNumber
	}
	return nil
}

// RawExtraction is the unflattened output of one enrichment attempt:
// category/priority plus the category-specific sub-object, if any. Category
// and Priority stay as plain strings here; the flattener owns normalisation.
type RawExtraction struct {
	Category string         `json:"category"`
	Priority string         `json:"priority"`
	Invoice  *InvoiceFields `json:"invoice,omitempty"`
	Request  *RequestFields `json:"request,omitempty"`
}
