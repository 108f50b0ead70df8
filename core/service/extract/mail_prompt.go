package extract

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// TrimText returns the first max characters of the trimmed string.
func TrimText(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

// ComposeEmailText builds a model prompt from subject, body and attachment
// snippets, each section clearly delimited.
func ComposeEmailText(subject, body string, attachments []string) string {
	var parts []string
	if subj := strings.TrimSpace(subject); subj != "" {
		parts = append(parts, "Subject: "+subj)
	}
	parts = append(parts, "Email Body:", strings.TrimSpace(body))
	var att []string
	for i, a := range attachments {
		if snippet := strings.TrimSpace(a); snippet != "" {
			att = append(att, fmt.Sprintf("--- Attachment %d ---\n%s", i+1, snippet))
		}
	}
	if len(att) > 0 {
		parts = append(parts, "\nAttachments:")
		parts = append(parts, att...)
	}
	return strings.Join(parts, "\n\n")
}

// DetSeed derives a stable generation seed from the external message id and
// the prompt text: the first four bytes of sha256(id || text), big-endian.
// Same (id, text) always yields the same seed; different ids practically
// never collide.
func DetSeed(externalID, text string) int {
	h := sha256.New()
	h.Write([]byte(externalID))
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint32(sum[:4]))
}

// SHA8 returns a short digest for correlation logging, never for security.
func SHA8(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// =============================================================================
// Task instructions
// =============================================================================

const classifyInstructions = `You are a STRICT JSON classifier for business emails.

Read the email above and output ONLY a JSON object of this exact shape:
{"category": "<category>", "priority": "<priority>"}

category MUST be exactly one of: "General", "Invoice", "Customer Requests", "Misc".
- "Invoice": bills, invoices, statements, payment demands.
- "Customer Requests": a customer or team member asking for help, access,
  support or information that requires action.
- "Misc": meetings, calendar invites, timesheets, newsletters.
- "General": everything else.

priority MUST be exactly one of: "High", "Medium", "Low".
Use "High" only for genuinely time-critical mail.

Output the JSON object and nothing else. No prose, no markdown fences.`

const invoiceInstructions = `Extract invoice details strictly from the text provided above (email + attachments).

Output ONLY a JSON object with these keys (use null for anything not present
in the text, never invent values):
{"invoice_number": ..., "invoice_date": ..., "due_date": ...,
 "invoice_amount": ..., "payment_link": ..., "bsb": ..., "account_number": ...,
 "account_name": ..., "biller_code": ..., "payment_reference": ...,
 "description": ...}

- Dates as written in the document, do not reformat.
- invoice_amount is the total payable including tax, keep the currency symbol
  if one is present.
- description is a one-line summary of what the invoice is for.

Output the JSON object and nothing else. No prose, no markdown fences.`

const requestInstructions = `Summarise the customer's request above in 2-3 sentences.

Output ONLY a JSON object of this exact shape:
{"summary": "<2-3 sentence summary of what is being asked and of whom>"}

Write the summary in plain business English, keep names and identifiers from
the email. Output the JSON object and nothing else. No prose, no markdown
fences.`
