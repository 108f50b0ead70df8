package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/core/port/out"
	"github.com/ayla-solutions/mail-classification-api/core/service/ingest"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
)

// previewChars caps the body/attachment excerpts in the intake response.
const previewChars = 280

// MailHandler serves GET /mails: fetch, Phase-1 insert, Phase-2 queue.
type MailHandler struct {
	source   out.MessageSource
	ingestor *ingest.Ingestor
	log      zerolog.Logger
}

// NewMailHandler wires a MailHandler.
func NewMailHandler(source out.MessageSource, ingestor *ingest.Ingestor) *MailHandler {
	return &MailHandler{
		source:   source,
		ingestor: ingestor,
		log:      log.With().Str("component", "mail_handler").Logger(),
	}
}

// Register mounts the routes.
func (h *MailHandler) Register(app *fiber.App) {
	app.Get("/mails", h.ProcessMails)
}

type preview struct {
	Len     int    `json:"len"`
	Preview string `json:"preview"`
}

func makePreview(s string) preview {
	s = strings.TrimSpace(s)
	p := preview{Len: len(s)}
	if len(s) > previewChars {
		p.Preview = s[:previewChars] + "…"
	} else {
		p.Preview = s
	}
	return p
}

// ProcessMails triggers one intake batch. The caller's bearer token is
// required and passed through to the message source untouched.
func (h *MailHandler) ProcessMails(c *fiber.Ctx) error {
	rid := RequestID(c)

	auth := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return apperr.Unauthorized("missing bearer token")
	}
	bearer := strings.TrimSpace(auth[len("bearer "):])

	fetchStart := time.Now()
	mails, err := h.source.FetchMessages(c.Context(), bearer)
	fetchMS := time.Since(fetchStart).Milliseconds()
	if err != nil {
		h.log.Error().Err(err).Str("request_id", rid).Msg("message fetch failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}
	if fetchMS > 4000 {
		h.log.Warn().Str("request_id", rid).Int64("elapsed_ms", fetchMS).Msg("slow message fetch")
	}

	res := h.ingestor.ProcessBatch(c.Context(), mails)

	details := make([]fiber.Map, 0, len(res.Details))
	for i, d := range res.Details {
		entry := fiber.Map{
			"mail_id":            d.ExternalID,
			"subject":            truncate(d.Subject, 120),
			"created_or_skipped": d.Error == "",
			"queued":             d.Queued,
		}
		if d.Error != "" {
			entry["error"] = d.Error
		}
		if i < len(mails) {
			entry["body_text"] = makePreview(mails[i].BestBody())
			entry["attachment_text"] = makePreview(mails[i].AttachmentText)
			entry["attachments_count"] = len(mails[i].Attachments)
		}
		details = append(details, entry)
	}

	return c.JSON(fiber.Map{
		"ok":                        true,
		"fetched":                   res.Fetched,
		"phase1_created_or_skipped": res.CreatedOrSkipped,
		"phase2_queued_enrichment":  res.Queued,
		"fetch_ms":                  fetchMS,
		"details":                   details,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
