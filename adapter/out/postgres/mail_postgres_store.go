// Package postgres implements the RecordStore port on PostgreSQL for
// deployments that keep records in their own database instead of Dataverse.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
)

// Store implements out.RecordStore over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewStore connects the pool and ensures the schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperr.DatabaseError("connect", err)
	}
	s := &Store{
		pool: pool,
		log:  log.With().Str("component", "postgres").Logger(),
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// Driver implements out.RecordStore.
func (s *Store) Driver() string { return "postgres" }

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS mail_records (
    mail_id            TEXT PRIMARY KEY,
    sender             TEXT,
    received_from      TEXT,
    received_at        TEXT,
    subject            TEXT,
    email_body         TEXT,
    attachments        TEXT,
    attachment_content TEXT,
    category           TEXT,
    priority           TEXT,
    paid               BOOLEAN,
    invoice_number     TEXT,
    invoice_date       TEXT,
    due_date           TEXT,
    invoice_amount     TEXT,
    payment_link       TEXT,
    bsb                TEXT,
    account_number     TEXT,
    account_name       TEXT,
    biller_code        TEXT,
    payment_reference  TEXT,
    description        TEXT,
    summary            TEXT,
    ticket_number      TEXT,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return apperr.DatabaseError("ensure schema", err)
	}
	return nil
}

// Lookup returns the mail id itself as the record handle, or "" when absent.
func (s *Store) Lookup(ctx context.Context, externalID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT mail_id FROM mail_records WHERE mail_id = $1`, externalID).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", apperr.DatabaseError("lookup", err)
	}
	return id, nil
}

// Create inserts the minimal Phase-1 record. ON CONFLICT DO NOTHING keeps the
// call idempotent even when two batches race.
func (s *Store) Create(ctx context.Context, m *domain.Message) error {
	if m == nil || m.ID == "" {
		return apperr.MissingField("mail_id")
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO mail_records
    (mail_id, sender, received_from, received_at, subject, email_body, attachments, attachment_content)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (mail_id) DO NOTHING`,
		m.ID, m.Sender, m.ReceivedFrom, m.ReceivedAt, m.Subject,
		m.BestBody(), strings.Join(m.Attachments, ", "), m.AttachmentText)
	if err != nil {
		return apperr.DatabaseError("create", err)
	}
	return nil
}

// Patch updates only the columns the enrichment carries. Absent fields keep
// their stored value.
func (s *Store) Patch(ctx context.Context, externalID string, e domain.EnrichmentResult) error {
	if externalID == "" {
		return apperr.MissingField("mail_id")
	}

	set := []string{"updated_at = now()"}
	args := []any{externalID}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if e.Category != "" {
		add("category", string(e.Category))
	}
	if e.Priority != "" {
		add("priority", string(e.Priority))
	}

	addIf := func(col string, v *string) {
		if v != nil {
			add(col, *v)
		}
	}

	switch e.Category {
	case domain.CategoryInvoice:
		add("paid", false)
		addIf("invoice_number", e.InvoiceNumber)
		addIf("invoice_date", e.InvoiceDate)
		addIf("due_date", e.DueDate)
		addIf("invoice_amount", e.InvoiceAmount)
		addIf("payment_link", e.PaymentLink)
		addIf("bsb", e.BSB)
		addIf("account_number", e.AccountNumber)
		addIf("account_name", e.AccountName)
		addIf("biller_code", e.BillerCode)
		addIf("payment_reference", e.PaymentReference)
		addIf("description", e.Description)
	case domain.CategoryCustomerRequests:
		addIf("summary", e.Summary)
		addIf("ticket_number", e.TicketNumber)
	}

	q := fmt.Sprintf(`UPDATE mail_records SET %s WHERE mail_id = $1`, strings.Join(set, ", "))
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return apperr.DatabaseError("patch", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("mail record").WithDetail("mail_id", externalID)
	}
	return nil
}
