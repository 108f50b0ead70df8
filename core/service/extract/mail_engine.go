// Package extract is the model-backed classification and extraction engine.
// It owns prompt assembly, deterministic seeding, the three-stage JSON
// recovery ladder and the regex fallback for thin invoice extractions.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/core/port/out"
	"github.com/ayla-solutions/mail-classification-api/core/service/enrich"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
)

// =============================================================================
// Engine
// =============================================================================

// Config carries the per-task model names and generation limits.
type Config struct {
	ClassifierModel string
	InvoiceModel    string
	RequestModel    string

	Temperature      float32
	MaxTokens        int
	InvoiceMaxTokens int

	ClassifyMaxChars int
	ExtractMaxChars  int

	TicketPrefix string

	// CallTimeout bounds every single backend call.
	CallTimeout time.Duration
}

// Engine drives the model-backed path. Stateless apart from its
// collaborators; safe for concurrent use.
type Engine struct {
	gen out.TextGenerator
	cfg Config
	log zerolog.Logger
}

// NewEngine builds an Engine around a generation backend.
func NewEngine(gen out.TextGenerator, cfg Config) *Engine {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 120 * time.Second
	}
	return &Engine{
		gen: gen,
		cfg: cfg,
		log: log.With().Str("component", "extract-engine").Logger(),
	}
}

// =============================================================================
// Classification
// =============================================================================

// ClassifyText classifies an already-composed email text. The raw backend
// strings are coerced onto the canonical category/priority sets, so the
// result is always valid.
func (e *Engine) ClassifyText(ctx context.Context, externalID, text string) (domain.Classification, error) {
	text = TrimText(text, e.cfg.ClassifyMaxChars)
	prompt := text + "\n\n" + classifyInstructions

	var raw struct {
		Category string `json:"category"`
		Priority string `json:"priority"`
	}
	err := e.generateJSON(ctx, genTask{
		stage:      "classify",
		model:      e.cfg.ClassifierModel,
		prompt:     prompt,
		schemaName: "mail_classification",
		schema:     classificationSchema,
		seed:       DetSeed(externalID, prompt),
		maxTokens:  e.cfg.MaxTokens,
	}, &raw)
	if err != nil {
		return domain.Classification{}, err
	}
	return domain.Classification{
		Category: domain.CoerceCategory(raw.Category),
		Priority: domain.CoercePriority(raw.Priority),
	}, nil
}

// =============================================================================
// Invoice extraction
// =============================================================================

// ExtractInvoice pulls structured invoice fields from the composed text.
// When the backend populates two fields or fewer the regex fallback runs and
// fills the gaps; model-provided values are never overwritten.
func (e *Engine) ExtractInvoice(ctx context.Context, externalID, text string) (*domain.InvoiceFields, error) {
	text = TrimText(text, e.cfg.ExtractMaxChars)
	prompt := text + "\n\n" + invoiceInstructions

	inv := &domain.InvoiceFields{}
	err := e.generateJSON(ctx, genTask{
		stage:      "invoice",
		model:      e.cfg.InvoiceModel,
		prompt:     prompt,
		schemaName: "invoice_fields",
		schema:     invoiceSchema,
		seed:       DetSeed(externalID, prompt),
		maxTokens:  e.cfg.InvoiceMaxTokens,
	}, inv)
	if err != nil {
		return nil, err
	}

	if n := inv.CountPresent(); n <= 2 {
		fallback := FallbackInvoiceParse(text)
		inv.MergeMissing(fallback)
		e.log.Info().
			Str("mail_id", externalID).
			Int("model_fields", n).
			Int("merged_fields", inv.CountPresent()).
			Msg("invoice extraction thin, regex fallback merged")
	}
	return inv, nil
}

// =============================================================================
// Request summary
// =============================================================================

// ExtractRequestSummary produces the 2-3 sentence customer-request summary.
func (e *Engine) ExtractRequestSummary(ctx context.Context, externalID, text string) (*domain.RequestFields, error) {
	text = TrimText(text, e.cfg.ExtractMaxChars)
	prompt := text + "\n\n" + requestInstructions

	req := &domain.RequestFields{}
	err := e.generateJSON(ctx, genTask{
		stage:      "request",
		model:      e.cfg.RequestModel,
		prompt:     prompt,
		schemaName: "request_summary",
		schema:     requestSchema,
		seed:       DetSeed(externalID, prompt),
		maxTokens:  e.cfg.MaxTokens,
	}, req)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// =============================================================================
// Full extraction
// =============================================================================

// ExtractInput is one mail's worth of material for a full extraction run.
type ExtractInput struct {
	ExternalID      string
	Subject         string
	BodyText        string
	AttachmentsText []string
	ReceivedAt      string
}

// Extract runs the full pipeline for one mail: classify, then the
// category-specific extraction. Customer requests without a backend ticket
// number get a deterministic one derived from the received date and the
// external id.
func (e *Engine) Extract(ctx context.Context, in ExtractInput) (*domain.RawExtraction, error) {
	if strings.TrimSpace(in.BodyText) == "" && len(in.AttachmentsText) == 0 {
		return nil, apperr.MissingField("body_text")
	}

	// One combined blob for every stage, attachments included. Classification
	// trims it to ClassifyMaxChars internally, so an invoice living only in
	// an attachment is still visible to the classifier.
	fullText := ComposeEmailText(in.Subject, in.BodyText, in.AttachmentsText)

	cls, err := e.ClassifyText(ctx, in.ExternalID, fullText)
	if err != nil {
		return nil, err
	}

	raw := &domain.RawExtraction{
		Category: string(cls.Category),
		Priority: string(cls.Priority),
	}

	switch cls.Category {
	case domain.CategoryInvoice:
		inv, err := e.ExtractInvoice(ctx, in.ExternalID, fullText)
		if err != nil {
			return nil, err
		}
		raw.Invoice = inv

	case domain.CategoryCustomerRequests:
		req, err := e.ExtractRequestSummary(ctx, in.ExternalID, fullText)
		if err != nil {
			return nil, err
		}
		if req.TicketNumber == nil || strings.TrimSpace(*req.TicketNumber) == "" {
			ticket := enrich.TicketNumber(e.cfg.TicketPrefix, enrich.TicketDate(in.ReceivedAt), in.ExternalID)
			req.TicketNumber = &ticket
		}
		raw.Request = req
	}

	return raw, nil
}

// =============================================================================
// JSON recovery ladder
// =============================================================================

type genTask struct {
	stage      string
	model      string
	prompt     string
	schemaName string
	schema     json.RawMessage
	seed       int
	maxTokens  int
}

// generateJSON obtains a JSON value from the backend and decodes it into v.
// Three stages, cheapest contract first:
//
//  1. schema-constrained generation,
//  2. generic JSON generation,
//  3. balanced-JSON substring scan over the stage-2 output.
//
// Fenced output is tolerated at every stage. A stage only advances on a
// decode failure; transport errors abort immediately.
func (e *Engine) generateJSON(ctx context.Context, task genTask, v any) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	started := time.Now()

	req := out.GenerateRequest{
		Model:       task.model,
		Prompt:      task.prompt,
		Mode:        out.ModeSchema,
		SchemaName:  task.schemaName,
		Schema:      task.schema,
		Seed:        task.seed,
		MaxTokens:   task.maxTokens,
		Temperature: e.cfg.Temperature,
	}

	resp, err := e.gen.Generate(ctx, req)
	if err != nil {
		return apperr.ExtractionFailed(task.stage, err)
	}
	if decodeErr := json.Unmarshal([]byte(StripCodeFences(resp)), v); decodeErr == nil {
		e.observe(task, started, 1)
		return nil
	}

	req.Mode = out.ModeJSON
	req.SchemaName = ""
	req.Schema = nil
	resp, err = e.gen.Generate(ctx, req)
	if err != nil {
		return apperr.ExtractionFailed(task.stage, err)
	}
	cleaned := StripCodeFences(resp)
	if decodeErr := json.Unmarshal([]byte(cleaned), v); decodeErr == nil {
		e.observe(task, started, 2)
		return nil
	}

	if frag, ok := FirstCompleteJSON(cleaned); ok {
		if decodeErr := json.Unmarshal([]byte(frag), v); decodeErr == nil {
			e.observe(task, started, 3)
			return nil
		}
	}

	e.log.Warn().
		Str("stage", task.stage).
		Str("model", task.model).
		Str("prompt_sha", SHA8(task.prompt)).
		Msg("all JSON recovery stages exhausted")
	return apperr.MalformedOutput(task.stage)
}

func (e *Engine) observe(task genTask, started time.Time, recoveryStage int) {
	elapsed := time.Since(started)
	evt := e.log.Debug()
	if elapsed > 30*time.Second {
		evt = e.log.Warn()
	}
	evt.
		Str("stage", task.stage).
		Str("model", task.model).
		Int("recovery_stage", recoveryStage).
		Dur("elapsed", elapsed).
		Msg("generation completed")
}
