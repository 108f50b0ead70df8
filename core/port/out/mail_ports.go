// Package out defines the outbound ports the core calls. Implementations
// live under adapter/out; the core never imports them directly.
package out

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
)

// GenerateMode selects the output contract requested from the backend.
type GenerateMode int

const (
	// ModeSchema asks for schema-constrained JSON output.
	ModeSchema GenerateMode = iota
	// ModeJSON asks for generic JSON output (no schema enforcement).
	ModeJSON
)

// GenerateRequest is one text-generation call. Seed is derived from
// (external id, prompt) so retried calls with identical input are
// reproducible against a deterministic backend.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Mode        GenerateMode
	SchemaName  string          // ModeSchema only
	Schema      json.RawMessage // ModeSchema only
	Seed        int
	MaxTokens   int
	Temperature float32
}

// TextGenerator is the text-generation backend. It must support both output
// modes; anything else (retries, JSON recovery) is the engine's job.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// RecordStore is the external persistence collaborator, keyed by external
// message id. Create is expected to be cheap; callers guarantee idempotency
// by looking up first.
type RecordStore interface {
	// Lookup returns the store-side record handle for the external id, or
	// ("", nil) when no record exists.
	Lookup(ctx context.Context, externalID string) (string, error)
	// Create inserts the minimal Phase-1 record.
	Create(ctx context.Context, m *domain.Message) error
	// Patch applies the flattened enrichment onto the existing record.
	// Absent fields are omitted, never cleared.
	Patch(ctx context.Context, externalID string, enrichment domain.EnrichmentResult) error
	// Driver names the backing implementation (for health reporting).
	Driver() string
}

// MessageSource is the upstream fetcher. Mailbox access itself is out of
// scope; the bearer token is passed through untouched.
type MessageSource interface {
	FetchMessages(ctx context.Context, bearer string) ([]*domain.Message, error)
}

// DedupFilter is an optional fast path in front of the Phase-1 existence
// lookup. A negative answer is never authoritative; the store lookup is.
type DedupFilter interface {
	// IsNew reports whether the id has not been seen before, marking it
	// seen atomically when it is new.
	IsNew(ctx context.Context, externalID string) (bool, error)
	// Forget clears the seen mark. Callers release the mark when record
	// creation fails, so later batches re-check the store instead of
	// trusting a mark with no record behind it.
	Forget(ctx context.Context, externalID string) error
}
