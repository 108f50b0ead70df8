// Package memory implements the RecordStore port in process memory. Used in
// dev mode and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
)

// Record is one stored mail with its enrichment state.
type Record struct {
	Mail       domain.Message
	Enrichment *domain.EnrichmentResult
	Patches    int
}

// Store implements out.RecordStore with a mutex-guarded map.
type Store struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewStore builds an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Driver implements out.RecordStore.
func (s *Store) Driver() string { return "memory" }

// Lookup implements out.RecordStore.
func (s *Store) Lookup(_ context.Context, externalID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[externalID]; ok {
		return externalID, nil
	}
	return "", nil
}

// Create implements out.RecordStore. Re-creating an existing id is a no-op so
// the idempotency contract holds even without the caller's lookup.
func (s *Store) Create(_ context.Context, m *domain.Message) error {
	if m == nil || m.ID == "" {
		return apperr.MissingField("mail_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[m.ID]; ok {
		return nil
	}
	s.records[m.ID] = &Record{Mail: *m}
	return nil
}

// Patch implements out.RecordStore.
func (s *Store) Patch(_ context.Context, externalID string, e domain.EnrichmentResult) error {
	if externalID == "" {
		return apperr.MissingField("mail_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[externalID]
	if !ok {
		return apperr.NotFound("mail record").WithDetail("mail_id", externalID)
	}
	enriched := e
	rec.Enrichment = &enriched
	rec.Patches++
	return nil
}

// Get returns a copy of the stored record, for inspection.
func (s *Store) Get(externalID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[externalID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
