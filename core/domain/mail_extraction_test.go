package domain

import (
	"testing"

	"github.com/goccy/go-json"
)

func strp(s string) *string { return &s }

func TestInvoiceFieldsCountPresent(t *testing.T) {
	tests := []struct {
		name string
		inv  InvoiceFields
		want int
	}{
		{"empty", InvoiceFields{}, 0},
		{"two fields", InvoiceFields{InvoiceNumber: strp("INV-1"), DueDate: strp("2025-09-01")}, 2},
		{"empty string ignored", InvoiceFields{InvoiceNumber: strp(""), InvoiceAmount: strp("$10")}, 1},
		{"all eleven", InvoiceFields{
			InvoiceNumber: strp("a"), InvoiceDate: strp("b"), DueDate: strp("c"),
			InvoiceAmount: strp("d"), PaymentLink: strp("e"), BSB: strp("f"),
			AccountNumber: strp("g"), AccountName: strp("h"), BillerCode: strp("i"),
			PaymentReference: strp("j"), Description: strp("k"),
		}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.CountPresent(); got != tt.want {
				t.Errorf("CountPresent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInvoiceFieldsMergeMissing(t *testing.T) {
	dst := InvoiceFields{
		InvoiceNumber: strp("INV-7"),
		InvoiceAmount: strp(""),
	}
	src := InvoiceFields{
		InvoiceNumber: strp("WRONG"),
		InvoiceAmount: strp("$99.00"),
		DueDate:       strp("2025-10-01"),
	}
	dst.MergeMissing(&src)

	if *dst.InvoiceNumber != "INV-7" {
		t.Errorf("populated value overwritten: got %q", *dst.InvoiceNumber)
	}
	if dst.InvoiceAmount == nil || *dst.InvoiceAmount != "$99.00" {
		t.Errorf("empty value not filled: got %v", dst.InvoiceAmount)
	}
	if dst.DueDate == nil || *dst.DueDate != "2025-10-01" {
		t.Errorf("nil value not filled: got %v", dst.DueDate)
	}

	dst.MergeMissing(nil) // must not panic
}

func TestRequestFieldsAlternateKeys(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantSum    string
		wantTicket string
	}{
		{"canonical", `{"summary":"needs access","ticket_number":"REQ-1"}`, "needs access", "REQ-1"},
		{"overview", `{"overview":"needs access"}`, "needs access", ""},
		{"request_number", `{"summary":"s","request_number":"REQ-2"}`, "s", "REQ-2"},
		{"canonical wins", `{"summary":"a","overview":"b","ticket_number":"T1","request_number":"T2"}`, "a", "T1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r RequestFields
			if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if r.Summary != tt.wantSum {
				t.Errorf("Summary = %q, want %q", r.Summary, tt.wantSum)
			}
			got := ""
			if r.TicketNumber != nil {
				got = *r.TicketNumber
			}
			if got != tt.wantTicket {
				t.Errorf("TicketNumber = %q, want %q", got, tt.wantTicket)
			}
		})
	}
}

func TestMessageBestBody(t *testing.T) {
	tests := []struct {
		name string
		m    Message
		want string
	}{
		{"full text wins", Message{BodyText: "full", Body: "html", BodyPreview: "prev"}, "full"},
		{"body fallback", Message{Body: "html", BodyPreview: "prev"}, "html"},
		{"preview fallback", Message{BodyPreview: "prev"}, "prev"},
		{"all empty", Message{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.BestBody(); got != tt.want {
				t.Errorf("BestBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
