package enrich

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Progress counts enrichment completions for one ingest batch. Scoped to the
// batch, never global, so overlapping batches report independently.
type Progress struct {
	mu        sync.Mutex
	total     int
	processed int
	log       zerolog.Logger
}

// NewProgress starts a counter for a batch of the given size.
func NewProgress(total int) *Progress {
	return &Progress{
		total: total,
		log:   log.With().Str("component", "enrich-progress").Logger(),
	}
}

// Mark records one finished mail (success, degraded or failed alike) and
// logs the running count.
func (p *Progress) Mark(externalID string) {
	p.mu.Lock()
	p.processed++
	processed, total := p.processed, p.total
	p.mu.Unlock()

	p.log.Info().
		Str("mail_id", externalID).
		Int("processed", processed).
		Int("total", total).
		Msg("enrichment progressed")
}

// Snapshot returns the current processed/total counts.
func (p *Progress) Snapshot() (processed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.total
}
