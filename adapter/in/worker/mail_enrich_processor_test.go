package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayla-solutions/mail-classification-api/adapter/out/memory"
	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/core/port/out"
	"github.com/ayla-solutions/mail-classification-api/core/service/classify"
	"github.com/ayla-solutions/mail-classification-api/core/service/enrich"
	"github.com/ayla-solutions/mail-classification-api/core/service/extract"
)

// scriptedGenerator replays responses in call order; err makes every call
// fail.
type scriptedGenerator struct {
	responses []string
	err       error
	calls     int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ out.GenerateRequest) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	i := g.calls - 1
	if i >= len(g.responses) {
		i = len(g.responses) - 1
	}
	return g.responses[i], nil
}

func newTestProcessor(gen out.TextGenerator, store out.RecordStore) *EnrichProcessor {
	engine := extract.NewEngine(gen, extract.Config{
		ClassifierModel:  "clf",
		InvoiceModel:     "inv",
		RequestModel:     "req",
		MaxTokens:        200,
		InvoiceMaxTokens: 400,
		ClassifyMaxChars: 4000,
		ExtractMaxChars:  12000,
		TicketPrefix:     "REQ-",
		CallTimeout:      time.Second,
	})
	return NewEnrichProcessor(engine, classify.NewKeywordClassifier(), store)
}

func seedStore(t *testing.T, store *memory.Store, m *domain.Message) {
	t.Helper()
	if err := store.Create(context.Background(), m); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func TestProcessInvoiceSuccess(t *testing.T) {
	store := memory.NewStore()
	m := &domain.Message{
		ID:         "inv-mail-1",
		Subject:    "Invoice INV-9 due",
		BodyText:   "Invoice Number: INV-9\nTotal Due: $250.00\nDue Date: 30/09/2025",
		ReceivedAt: "2025-08-27T06:50:00Z",
	}
	seedStore(t, store, m)

	gen := &scriptedGenerator{responses: []string{
		`{"category":"Invoice","priority":"Low"}`,
		`{"invoice_number":"INV-9","invoice_amount":"$250.00","due_date":"30/09/2025"}`,
	}}
	progress := enrich.NewProgress(1)

	outcome := newTestProcessor(gen, store).Process(context.Background(), &Job{Mail: m, Progress: progress})

	if outcome.Status != domain.OutcomeSuccess {
		t.Fatalf("status = %s, err = %v", outcome.Status, outcome.Err)
	}
	rec, ok := store.Get(m.ID)
	if !ok || rec.Enrichment == nil {
		t.Fatal("record not patched")
	}
	if rec.Enrichment.Category != domain.CategoryInvoice {
		t.Errorf("category = %s", rec.Enrichment.Category)
	}
	if rec.Enrichment.InvoiceNumber == nil || *rec.Enrichment.InvoiceNumber != "INV-9" {
		t.Errorf("invoice number = %v", rec.Enrichment.InvoiceNumber)
	}
	if processed, _ := progress.Snapshot(); processed != 1 {
		t.Errorf("progress not marked: %d", processed)
	}
}

func TestProcessCustomerRequestSuccess(t *testing.T) {
	store := memory.NewStore()
	m := &domain.Message{
		ID:         "CRQ-offboard-urgent-001",
		Subject:    "URGENT: offboard contractor",
		BodyText:   "please revoke access for the contractor leaving today",
		ReceivedAt: "2025-08-27T06:50:00Z",
	}
	seedStore(t, store, m)

	gen := &scriptedGenerator{responses: []string{
		`{"category":"Customer Requests","priority":"High"}`,
		`{"summary":"Contractor offboarding: revoke all access today."}`,
	}}

	outcome := newTestProcessor(gen, store).Process(context.Background(), &Job{Mail: m, Progress: enrich.NewProgress(1)})

	if outcome.Status != domain.OutcomeSuccess {
		t.Fatalf("status = %s, err = %v", outcome.Status, outcome.Err)
	}
	rec, _ := store.Get(m.ID)
	if rec.Enrichment.Summary == nil {
		t.Fatal("summary missing")
	}
	if rec.Enrichment.TicketNumber == nil || *rec.Enrichment.TicketNumber != "REQ-20250827-ENT001" {
		t.Errorf("ticket = %v, want REQ-20250827-ENT001", rec.Enrichment.TicketNumber)
	}
	if rec.Enrichment.HasInvoiceFields() {
		t.Error("request mail must not carry invoice fields")
	}
}

func TestProcessDegradedUrgentRequest(t *testing.T) {
	store := memory.NewStore()
	m := &domain.Message{
		ID:       "m-urgent",
		Subject:  "URGENT: access issue",
		BodyText: "I cannot log in, please fix asap",
	}
	seedStore(t, store, m)

	gen := &scriptedGenerator{err: errors.New("backend down")}

	outcome := newTestProcessor(gen, store).Process(context.Background(), &Job{Mail: m, Progress: enrich.NewProgress(1)})

	if outcome.Status != domain.OutcomeDegraded {
		t.Fatalf("status = %s", outcome.Status)
	}
	if outcome.Err == nil {
		t.Error("degraded outcome must carry the cause")
	}
	rec, _ := store.Get(m.ID)
	if rec.Enrichment.Category != domain.CategoryCustomerRequests {
		t.Errorf("category = %s, want keyword answer", rec.Enrichment.Category)
	}
	if rec.Enrichment.Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, urgency word must flip High", rec.Enrichment.Priority)
	}
	if rec.Enrichment.HasInvoiceFields() || rec.Enrichment.HasRequestFields() {
		t.Error("degraded result must carry category and priority only")
	}
}

func TestProcessDegradedInvoiceNoUrgency(t *testing.T) {
	store := memory.NewStore()
	m := &domain.Message{
		ID:       "m-inv",
		Subject:  "Monthly bill",
		BodyText: "your invoice for August is attached",
	}
	seedStore(t, store, m)

	gen := &scriptedGenerator{err: errors.New("backend down")}

	outcome := newTestProcessor(gen, store).Process(context.Background(), &Job{Mail: m, Progress: enrich.NewProgress(1)})

	if outcome.Status != domain.OutcomeDegraded {
		t.Fatalf("status = %s", outcome.Status)
	}
	rec, _ := store.Get(m.ID)
	if rec.Enrichment.Category != domain.CategoryInvoice {
		t.Errorf("category = %s", rec.Enrichment.Category)
	}
	if rec.Enrichment.Priority != domain.PriorityLow {
		t.Errorf("priority = %s, no urgency word present", rec.Enrichment.Priority)
	}
	if rec.Enrichment.HasInvoiceFields() {
		t.Error("keyword path never produces invoice sub-fields")
	}
}

func TestProcessEmptyBodyDegrades(t *testing.T) {
	store := memory.NewStore()
	m := &domain.Message{ID: "m-empty", Subject: "invoice"}
	seedStore(t, store, m)

	gen := &scriptedGenerator{responses: []string{`{}`}}

	outcome := newTestProcessor(gen, store).Process(context.Background(), &Job{Mail: m, Progress: enrich.NewProgress(1)})

	if outcome.Status != domain.OutcomeDegraded {
		t.Fatalf("status = %s", outcome.Status)
	}
	if gen.calls != 0 {
		t.Errorf("empty body must not reach the backend, calls = %d", gen.calls)
	}
	rec, _ := store.Get(m.ID)
	if rec.Enrichment == nil || rec.Enrichment.Category != domain.CategoryInvoice {
		t.Errorf("subject keywords still classify: %+v", rec.Enrichment)
	}
}

func TestProcessMissingID(t *testing.T) {
	store := memory.NewStore()
	progress := enrich.NewProgress(1)

	outcome := newTestProcessor(&scriptedGenerator{}, store).Process(
		context.Background(), &Job{Mail: &domain.Message{Subject: "x"}, Progress: progress})

	if outcome.Status != domain.OutcomeFailed {
		t.Fatalf("status = %s", outcome.Status)
	}
	if store.Len() != 0 {
		t.Error("nothing should be stored")
	}
	if processed, _ := progress.Snapshot(); processed != 1 {
		t.Error("failed mail must still mark progress")
	}
}

func TestProcessPatchFailure(t *testing.T) {
	// Store without the row: Patch returns not-found and the outcome flips
	// to Failed even though extraction succeeded.
	store := memory.NewStore()
	m := &domain.Message{ID: "m-ghost", Subject: "hi", BodyText: "company picnic"}

	gen := &scriptedGenerator{responses: []string{`{"category":"General","priority":"Low"}`}}

	outcome := newTestProcessor(gen, store).Process(context.Background(), &Job{Mail: m, Progress: enrich.NewProgress(1)})

	if outcome.Status != domain.OutcomeFailed {
		t.Fatalf("status = %s", outcome.Status)
	}
}
