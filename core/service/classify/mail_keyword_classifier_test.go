package classify

import (
	"testing"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
)

func TestClassifyText(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name         string
		text         string
		wantCategory domain.Category
		wantPriority domain.Priority
	}{
		{"invoice keyword", "please find the invoice attached", domain.CategoryInvoice, domain.PriorityLow},
		{"bill keyword", "your monthly bill is ready", domain.CategoryInvoice, domain.PriorityLow},
		{"support keyword", "I have an issue logging in", domain.CategoryCustomerRequests, domain.PriorityLow},
		{"access keyword", "please grant access to the shared drive", domain.CategoryCustomerRequests, domain.PriorityLow},
		{"customer keyword", "a customer called about the order", domain.CategoryCustomerRequests, domain.PriorityLow},
		{"meeting keyword", "meeting tomorrow at 10", domain.CategoryMisc, domain.PriorityLow},
		{"timesheet keyword", "timesheet reminder", domain.CategoryMisc, domain.PriorityLow},
		{"no keyword", "company picnic photos", domain.CategoryGeneral, domain.PriorityLow},
		{"urgent flips priority", "URGENT: server down, need support", domain.CategoryCustomerRequests, domain.PriorityHigh},
		{"asap without category", "please reply asap", domain.CategoryGeneral, domain.PriorityHigh},
		{"high priority phrase", "this is high priority", domain.CategoryGeneral, domain.PriorityHigh},
		{"never medium", "important invoice due", domain.CategoryInvoice, domain.PriorityHigh},
		{"empty", "", domain.CategoryGeneral, domain.PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ClassifyText(tt.text)
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Priority != tt.wantPriority {
				t.Errorf("priority = %q, want %q", got.Priority, tt.wantPriority)
			}
		})
	}
}

func TestClassifyTextTableOrder(t *testing.T) {
	c := NewKeywordClassifier()

	// "invoice" appears in an earlier row than "support": first hit wins even
	// when both keywords occur.
	got := c.ClassifyText("support needed for invoice processing")
	if got.Category != domain.CategoryInvoice {
		t.Errorf("category = %q, want %q (earlier row must win)", got.Category, domain.CategoryInvoice)
	}
}

func TestClassifyTextDeterministic(t *testing.T) {
	c := NewKeywordClassifier()
	const text = "URGENT invoice overdue"
	first := c.ClassifyText(text)
	for i := 0; i < 100; i++ {
		if got := c.ClassifyText(text); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestClassifyMessage(t *testing.T) {
	c := NewKeywordClassifier()

	m := &domain.Message{
		Subject:     "FYI",
		BodyText:    "see attached",
		Attachments: []string{"invoice_march.pdf"},
	}
	got := c.Classify(m)
	if got.Category != domain.CategoryInvoice {
		t.Errorf("attachment name not scanned: category = %q", got.Category)
	}

	if got := c.Classify(nil); got.Category != domain.CategoryGeneral || got.Priority != domain.PriorityLow {
		t.Errorf("nil message: got %+v", got)
	}
}

func TestWithUrgencyWords(t *testing.T) {
	c := NewKeywordClassifier(WithUrgencyWords([]string{"mayday"}))

	if got := c.ClassifyText("mayday, printer on fire"); got.Priority != domain.PriorityHigh {
		t.Errorf("custom urgency word ignored: priority = %q", got.Priority)
	}
	if got := c.ClassifyText("this is urgent"); got.Priority != domain.PriorityLow {
		t.Errorf("default urgency word should be replaced: priority = %q", got.Priority)
	}
}
