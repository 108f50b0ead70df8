// Package dataverse implements the RecordStore port on the Microsoft
// Dataverse Web API (OData v9.2). All enrichment columns are text; booleans
// stay booleans.
package dataverse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
	"github.com/ayla-solutions/mail-classification-api/pkg/httputil"
)

// Column logical names. The crabb_ prefix is the table publisher prefix.
const (
	colGraphID  = "crabb_id"
	colCategory = "crabb_category"
	colPriority = "crabb_priority"
	colPaid     = "crabb_paid"

	colInvNumber      = "crabb_invoice_number"
	colInvDate        = "crabb_invoice_date"
	colInvDueDate     = "crabb_due_date"
	colInvAmount      = "crabb_invoice_amount"
	colInvPaymentLink = "crabb_payment_link"
	colInvBSB         = "crabb_bsb"
	colInvAccNo       = "crabb_acnt_number"
	colInvAccName     = "crabb_acnt_name"
	colInvDescription = "crabb_inv_desc"
	colBillerCode     = "crabb_biller_code"
	colPaymentRef     = "crabb_payment_reference"

	colReqOverview = "crabb_cr_overview"
	colReqNumber   = "crabb_cr_number"
)

// Config holds Dataverse connection settings.
type Config struct {
	Resource     string // e.g. https://org.crm6.dynamics.com
	Table        string // plural logical name, e.g. crabb_arth_main1s
	PrimaryID    string // primary key logical name
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Store implements out.RecordStore against Dataverse.
type Store struct {
	cfg     Config
	client  *http.Client
	tokens  oauth2.TokenSource
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewStore wires a Store with client-credentials auth and a circuit breaker
// in front of the Web API.
func NewStore(cfg Config) *Store {
	cfg.Resource = strings.TrimRight(cfg.Resource, "/")
	if cfg.PrimaryID == "" {
		cfg.PrimaryID = "crabb_arth_main1id"
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{cfg.Resource + "/.default"},
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httputil.DefaultClient())

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dataverse",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Store{
		cfg:     cfg,
		client:  httputil.DataverseClient(),
		tokens:  cc.TokenSource(tokenCtx),
		breaker: breaker,
		log:     log.With().Str("component", "dataverse").Logger(),
	}
}

// Driver implements out.RecordStore.
func (s *Store) Driver() string { return "dataverse" }

func (s *Store) base() string {
	return s.cfg.Resource + "/api/data/v9.2"
}

// Lookup returns the row GUID for the external id, or "" when absent.
func (s *Store) Lookup(ctx context.Context, externalID string) (string, error) {
	filter := url.QueryEscape(fmt.Sprintf("%s eq '%s'", colGraphID, strings.ReplaceAll(externalID, "'", "''")))
	u := fmt.Sprintf("%s/%s?$select=%s&$filter=%s", s.base(), s.cfg.Table, s.cfg.PrimaryID, filter)

	body, err := s.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Value []map[string]any `json:"value"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperr.ExternalError("dataverse", err)
	}
	if len(resp.Value) == 0 {
		return "", nil
	}
	if id, ok := resp.Value[0][s.cfg.PrimaryID].(string); ok {
		return id, nil
	}
	return "", nil
}

// Create inserts the minimal Phase-1 record.
func (s *Store) Create(ctx context.Context, m *domain.Message) error {
	if m == nil || m.ID == "" {
		return apperr.MissingField("mail_id")
	}

	payload := map[string]any{
		colGraphID:                 m.ID,
		"crabb_sender":             m.Sender,
		"crabb_received_from":      m.ReceivedFrom,
		"crabb_received_at":        m.ReceivedAt,
		"crabb_subject":            m.Subject,
		"crabb_email_body":         m.BestBody(),
		"crabb_attachments":        strings.Join(m.Attachments, ", "),
		"crabb_attachment_content": m.AttachmentText,
	}

	u := fmt.Sprintf("%s/%s", s.base(), s.cfg.Table)
	if _, err := s.do(ctx, http.MethodPost, u, payload); err != nil {
		return err
	}
	s.log.Debug().Str("mail_id", m.ID).Msg("row created")
	return nil
}

// Patch applies the flattened enrichment to the existing row. Absent fields
// are omitted from the payload, never cleared. Invoice rows additionally get
// crabb_paid = false.
func (s *Store) Patch(ctx context.Context, externalID string, e domain.EnrichmentResult) error {
	if externalID == "" {
		return apperr.MissingField("mail_id")
	}

	rowID, err := s.Lookup(ctx, externalID)
	if err != nil {
		return err
	}
	if rowID == "" {
		return apperr.NotFound("dataverse row").WithDetail("mail_id", externalID)
	}

	payload := map[string]any{}
	if e.Category != "" {
		payload[colCategory] = string(e.Category)
	}
	if e.Priority != "" {
		payload[colPriority] = string(e.Priority)
	}

	setIf := func(col string, v *string) {
		if v != nil {
			payload[col] = *v
		}
	}

	switch e.Category {
	case domain.CategoryInvoice:
		payload[colPaid] = false
		setIf(colInvNumber, e.InvoiceNumber)
		setIf(colInvDate, e.InvoiceDate)
		setIf(colInvDueDate, e.DueDate)
		setIf(colInvAmount, e.InvoiceAmount)
		setIf(colInvPaymentLink, e.PaymentLink)
		setIf(colInvBSB, e.BSB)
		setIf(colInvAccNo, e.AccountNumber)
		setIf(colInvAccName, e.AccountName)
		setIf(colBillerCode, e.BillerCode)
		setIf(colPaymentRef, e.PaymentReference)
		setIf(colInvDescription, e.Description)
	case domain.CategoryCustomerRequests:
		setIf(colReqOverview, e.Summary)
		setIf(colReqNumber, e.TicketNumber)
	}

	if len(payload) == 0 {
		return nil
	}

	u := fmt.Sprintf("%s/%s(%s)", s.base(), s.cfg.Table, rowID)
	if _, err := s.do(ctx, http.MethodPatch, u, payload); err != nil {
		return err
	}
	s.log.Debug().Str("mail_id", externalID).Int("fields", len(payload)).Msg("row patched")
	return nil
}

// do executes one Web API call through the circuit breaker.
func (s *Store) do(ctx context.Context, method, u string, payload any) ([]byte, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		tok, err := s.tokens.Token()
		if err != nil {
			return nil, apperr.OAuthFailed("dataverse", err)
		}

		var body io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, apperr.InternalWithError(err)
			}
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return nil, apperr.InternalWithError(err)
		}
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("OData-MaxVersion", "4.0")
		req.Header.Set("OData-Version", "4.0")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, apperr.ExternalError("dataverse", err)
		}
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 300 {
			return nil, apperr.ExternalError("dataverse",
				fmt.Errorf("%s %s: status %d: %s", method, u, resp.StatusCode, truncate(string(data), 512)))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
