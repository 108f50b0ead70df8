package extract

import (
	"regexp"
	"strings"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
)

// Regex fallback for invoices, used when the model extracted too few fields.
// The merge step never lets a regex value overwrite a model-provided one.
// Description stays nil here: it needs summarisation, which only the model
// path can provide.

var (
	// Capture demands a digit so "Tax Invoice" or "Invoice Date:" cannot
	// yield the following word as the number.
	reInvoiceNumber = regexp.MustCompile(`(?i)\binvoice\s*(?:no\.?|number|#|id)?\s*[:#]?\s*([A-Za-z]{0,6}[-/]?\d[A-Za-z0-9/-]{0,23})`)
	reInvoiceDate   = regexp.MustCompile(`(?i)\b(?:invoice\s*date|date\s*of\s*issue|issued?(?:\s*on)?)\s*[:\-]?\s*(` + datePattern + `)`)
	reDueDate       = regexp.MustCompile(`(?i)\b(?:due\s*(?:date|by|on)?|payable\s*by)\s*[:\-]?\s*(` + datePattern + `)`)
	reAmount        = regexp.MustCompile(`(?i)\b(?:total\s*(?:due|amount|payable)?|amount\s*(?:due|payable)?|balance\s*due|invoice\s*amount)\s*(?:\(inc[^)]*\))?\s*[:\-]?\s*((?:AUD|USD|NZD|GBP|EUR|A?\$|€|£)?\s?[0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	rePaymentLink   = regexp.MustCompile(`https?://[^\s<>"')]+`)
	reBSB           = regexp.MustCompile(`(?i)\bbsb\s*(?:no\.?|number)?\s*[:\-]?\s*(\d{3})[\s\-]?(\d{3})\b`)
	reAccountNumber = regexp.MustCompile(`(?i)\b(?:account|acct?)\s*(?:no\.?|number|#)\s*[:\-]?\s*([0-9][0-9 \-]{3,14}[0-9])`)
	reAccountName   = regexp.MustCompile(`(?im)^\s*(?:account\s*name|name\s*of\s*account)\s*[:\-]\s*(.+?)\s*$`)
	reBillerCode    = regexp.MustCompile(`(?i)\bbiller\s*code\s*[:\-]?\s*(\d{3,10})\b`)
	rePaymentRef    = regexp.MustCompile(`(?i)\b(?:payment\s*)?ref(?:erence)?\s*(?:no\.?|number)?\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9\-]{2,24})\b`)
)

const datePattern = `\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}|\d{4}-\d{2}-\d{2}|\d{1,2}\s+[A-Za-z]{3,9}\.?\s+\d{4}|[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4}`

// FallbackInvoiceParse harvests invoice fields from text with patterns only.
// Best-effort: false positives are acceptable, a nil-heavy result is normal.
// Never fails.
func FallbackInvoiceParse(text string) *domain.InvoiceFields {
	inv := &domain.InvoiceFields{}
	if text == "" {
		return inv
	}

	inv.InvoiceNumber = firstGroup(reInvoiceNumber, text)
	inv.InvoiceDate = firstGroup(reInvoiceDate, text)
	inv.DueDate = firstGroup(reDueDate, text)
	inv.InvoiceAmount = firstGroup(reAmount, text)
	inv.AccountNumber = firstGroup(reAccountNumber, text)
	inv.AccountName = firstGroup(reAccountName, text)
	inv.BillerCode = firstGroup(reBillerCode, text)
	inv.PaymentReference = firstGroup(rePaymentRef, text)

	if m := rePaymentLink.FindString(text); m != "" {
		inv.PaymentLink = ptr(strings.TrimRight(m, ".,;"))
	}
	if m := reBSB.FindStringSubmatch(text); m != nil {
		inv.BSB = ptr(m[1] + "-" + m[2])
	}

	// Description intentionally left nil.
	return inv
}

func firstGroup(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}

func ptr(s string) *string { return &s }
