package enrich

import (
	"testing"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
)

func strp(s string) *string { return &s }

func fullInvoice() *domain.InvoiceFields {
	return &domain.InvoiceFields{
		InvoiceNumber:    strp("INV-1"),
		InvoiceDate:      strp("01/08/2025"),
		DueDate:          strp("15/08/2025"),
		InvoiceAmount:    strp("$100"),
		PaymentLink:      strp("https://pay.example.com"),
		BSB:              strp("062-000"),
		AccountNumber:    strp("12345678"),
		AccountName:      strp("Acme"),
		BillerCode:       strp("93880"),
		PaymentReference: strp("REF-9"),
		Description:      strp("hosting"),
	}
}

func TestFlattenInvoice(t *testing.T) {
	res := Flatten(domain.RawExtraction{
		Category: "Invoice",
		Priority: "High",
		Invoice:  fullInvoice(),
	})

	if res.Category != domain.CategoryInvoice || res.Priority != domain.PriorityHigh {
		t.Errorf("labels: (%s, %s)", res.Category, res.Priority)
	}
	if !res.HasInvoiceFields() {
		t.Fatal("invoice fields must carry over")
	}
	if res.InvoiceNumber == nil || *res.InvoiceNumber != "INV-1" {
		t.Errorf("invoice number = %v", res.InvoiceNumber)
	}
	if res.Description == nil || *res.Description != "hosting" {
		t.Errorf("description = %v", res.Description)
	}
	if res.HasRequestFields() {
		t.Error("invoice result must not carry request fields")
	}
}

func TestFlattenInvoicesAlias(t *testing.T) {
	res := Flatten(domain.RawExtraction{
		Category: "invoices",
		Priority: "Low",
		Invoice:  fullInvoice(),
	})
	if res.Category != domain.CategoryInvoice {
		t.Errorf("category = %q, want %q", res.Category, domain.CategoryInvoice)
	}
	if !res.HasInvoiceFields() {
		t.Error("alias must still unlock invoice fields")
	}
}

func TestFlattenCustomerRequests(t *testing.T) {
	res := Flatten(domain.RawExtraction{
		Category: "Customer Requests",
		Priority: "High",
		Request:  &domain.RequestFields{Summary: "needs access", TicketNumber: strp("REQ-20250827-ENT001")},
		Invoice:  fullInvoice(), // must be ignored for this category
	})

	if res.Summary == nil || *res.Summary != "needs access" {
		t.Errorf("summary = %v", res.Summary)
	}
	if res.TicketNumber == nil || *res.TicketNumber != "REQ-20250827-ENT001" {
		t.Errorf("ticket = %v", res.TicketNumber)
	}
	if res.HasInvoiceFields() {
		t.Error("request result must not carry invoice fields")
	}
}

func TestFlattenMinimalCategories(t *testing.T) {
	for _, cat := range []string{"General", "Misc", "miscellaneous", "unknown", "", "totally-bogus"} {
		t.Run("cat="+cat, func(t *testing.T) {
			res := Flatten(domain.RawExtraction{
				Category: cat,
				Priority: "Low",
				Invoice:  fullInvoice(),
				Request:  &domain.RequestFields{Summary: "leak"},
			})
			if res.HasInvoiceFields() || res.HasRequestFields() {
				t.Errorf("category %q must not leak sub-fields: %+v", cat, res)
			}
			if string(res.Category) != cat {
				t.Errorf("category must pass through unchanged: got %q, want %q", res.Category, cat)
			}
		})
	}
}

func TestFlattenIdempotent(t *testing.T) {
	raw := domain.RawExtraction{Category: "Invoice", Priority: "High", Invoice: fullInvoice()}
	first := Flatten(raw)
	second := Flatten(raw)
	if first != second {
		t.Errorf("flatten must be pure: %+v != %+v", first, second)
	}
}

func TestFlattenEmptySummaryOmitted(t *testing.T) {
	res := Flatten(domain.RawExtraction{
		Category: "Customer Requests",
		Priority: "Low",
		Request:  &domain.RequestFields{Summary: "   "},
	})
	if res.Summary != nil {
		t.Errorf("blank summary must be omitted, got %q", *res.Summary)
	}
}
