// Package ingest implements the two-phase intake flow: idempotent Phase-1
// record creation, then handoff to the asynchronous enrichment queue.
package ingest

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/core/port/out"
	"github.com/ayla-solutions/mail-classification-api/core/service/enrich"
)

// EnrichQueue accepts mails for Phase-2 enrichment. Implemented by the
// worker-pool adapter; defined here so the core stays adapter-free.
type EnrichQueue interface {
	Enqueue(m *domain.Message, progress *enrich.Progress) bool
}

// Detail records the Phase-1 outcome for one mail.
type Detail struct {
	ExternalID string `json:"mail_id"`
	Subject    string `json:"subject"`
	Created    bool   `json:"created"`
	Queued     bool   `json:"queued"`
	Error      string `json:"error,omitempty"`
}

// Result summarises one ProcessBatch run.
type Result struct {
	Fetched          int      `json:"fetched"`
	CreatedOrSkipped int      `json:"created_or_skipped"`
	Queued           int      `json:"queued"`
	Details          []Detail `json:"details"`
}

// Ingestor drives Phase 1 for a batch of fetched mails. The dedup filter is
// optional and only ever a fast path; the store lookup stays authoritative.
type Ingestor struct {
	store out.RecordStore
	dedup out.DedupFilter
	queue EnrichQueue
	log   zerolog.Logger
}

// NewIngestor wires an Ingestor. dedup may be nil.
func NewIngestor(store out.RecordStore, dedup out.DedupFilter, queue EnrichQueue) *Ingestor {
	return &Ingestor{
		store: store,
		dedup: dedup,
		queue: queue,
		log:   log.With().Str("component", "ingestor").Logger(),
	}
}

// ProcessBatch runs Phase 1 over the batch: for each mail, create the record
// unless one already exists, then enqueue enrichment. A mail whose create
// fails is neither enqueued nor retried here; reprocessing the batch is safe
// because creation is lookup-gated.
func (i *Ingestor) ProcessBatch(ctx context.Context, mails []*domain.Message) *Result {
	res := &Result{Fetched: len(mails)}
	progress := enrich.NewProgress(len(mails))

	for _, m := range mails {
		d := Detail{ExternalID: m.ID, Subject: m.Subject}

		created, err := i.ensureRecord(ctx, m)
		if err != nil {
			d.Error = err.Error()
			i.log.Error().Err(err).Str("mail_id", m.ID).Msg("phase-1 create failed")
			res.Details = append(res.Details, d)
			continue
		}
		d.Created = created
		res.CreatedOrSkipped++

		if i.queue != nil && i.queue.Enqueue(m, progress) {
			d.Queued = true
			res.Queued++
		}
		res.Details = append(res.Details, d)
	}

	i.log.Info().
		Int("fetched", res.Fetched).
		Int("created_or_skipped", res.CreatedOrSkipped).
		Int("queued", res.Queued).
		Msg("ingest batch processed")
	return res
}

// ensureRecord creates the Phase-1 record if the mail has not been seen.
// Returns true when a new record was created. IsNew marks the id seen before
// the record exists, so any failure past that point must release the mark;
// otherwise later batches would skip a mail that has no record behind it.
func (i *Ingestor) ensureRecord(ctx context.Context, m *domain.Message) (bool, error) {
	marked := false
	if i.dedup != nil {
		fresh, err := i.dedup.IsNew(ctx, m.ID)
		if err != nil {
			i.log.Warn().Err(err).Str("mail_id", m.ID).Msg("dedup filter unavailable, falling through to store lookup")
		} else if !fresh {
			return false, nil
		} else {
			marked = true
		}
	}

	handle, err := i.store.Lookup(ctx, m.ID)
	if err != nil {
		i.releaseMark(ctx, m.ID, marked)
		return false, err
	}
	if handle != "" {
		return false, nil
	}

	if err := i.store.Create(ctx, m); err != nil {
		i.releaseMark(ctx, m.ID, marked)
		return false, err
	}
	i.log.Debug().Str("mail_id", m.ID).Msg("phase-1 record created")
	return true, nil
}

func (i *Ingestor) releaseMark(ctx context.Context, externalID string, marked bool) {
	if !marked {
		return
	}
	if err := i.dedup.Forget(ctx, externalID); err != nil {
		i.log.Warn().Err(err).Str("mail_id", externalID).Msg("failed to release dedup mark")
	}
}
