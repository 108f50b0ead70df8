package worker

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/core/port/out"
	"github.com/ayla-solutions/mail-classification-api/core/service/classify"
	"github.com/ayla-solutions/mail-classification-api/core/service/enrich"
	"github.com/ayla-solutions/mail-classification-api/core/service/extract"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
)

// EnrichProcessor runs Phase 2 for one mail: model-backed extraction with
// keyword-classifier degradation, flatten, patch. The outcome is always a
// tagged value; the processor never panics outward and never leaves the
// batch counter unmarked.
type EnrichProcessor struct {
	engine  *extract.Engine
	keyword *classify.KeywordClassifier
	store   out.RecordStore
	log     zerolog.Logger
}

// NewEnrichProcessor wires an EnrichProcessor.
func NewEnrichProcessor(engine *extract.Engine, keyword *classify.KeywordClassifier, store out.RecordStore) *EnrichProcessor {
	return &EnrichProcessor{
		engine:  engine,
		keyword: keyword,
		store:   store,
		log:     log.With().Str("component", "enrich_processor").Logger(),
	}
}

// Process enriches one mail and patches the store.
//
// The keyword classifier runs first as a soft signal: its answer is logged
// for comparison but never patched on the success path. It becomes the
// result only when the model path fails, producing a Degraded outcome with
// category and priority alone.
func (p *EnrichProcessor) Process(ctx context.Context, job *Job) domain.Outcome {
	m := job.Mail
	defer func() {
		if job.Progress != nil {
			id := ""
			if m != nil {
				id = m.ID
			}
			job.Progress.Mark(id)
		}
	}()

	if m == nil || m.ID == "" {
		return domain.Failed(apperr.MissingField("mail_id"))
	}

	soft := p.keyword.Classify(m)
	p.log.Debug().
		Str("mail_id", m.ID).
		Str("keyword_category", string(soft.Category)).
		Str("keyword_priority", string(soft.Priority)).
		Msg("keyword pre-check")

	var attachments []string
	if m.AttachmentText != "" {
		attachments = []string{m.AttachmentText}
	}
	raw, err := p.engine.Extract(ctx, extract.ExtractInput{
		ExternalID:      m.ID,
		Subject:         m.Subject,
		BodyText:        m.BestBody(),
		AttachmentsText: attachments,
		ReceivedAt:      m.ReceivedAt,
	})

	var outcome domain.Outcome
	if err != nil {
		// Model path unusable (backend down, malformed output, empty body):
		// fall back to the keyword answer, sub-fields stay absent.
		outcome = domain.Degraded(domain.EnrichmentResult{
			Category: soft.Category,
			Priority: soft.Priority,
		}, err)
	} else {
		flat := enrich.Flatten(*raw)
		if flat.Category != soft.Category {
			p.log.Info().
				Str("mail_id", m.ID).
				Str("model_category", string(flat.Category)).
				Str("keyword_category", string(soft.Category)).
				Msg("model and keyword classifier disagree")
		}
		outcome = domain.Success(flat)
	}

	if patchErr := p.store.Patch(ctx, m.ID, outcome.Result); patchErr != nil {
		return domain.Failed(patchErr)
	}
	return outcome
}
