package enrich

import (
	"strings"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
)

// Flatten projects a raw extraction onto the flat patch record. The category
// gates which sub-fields survive:
//
//   - Invoice: every invoice field carries over.
//   - Customer Requests: summary and ticket number only.
//   - General / Misc (and any unrecognised category): category and priority
//     alone, so a junk backend label can never smuggle sub-fields into the
//     store.
//
// Pure and idempotent; applying it twice yields the same record.
func Flatten(raw domain.RawExtraction) domain.EnrichmentResult {
	category := strings.TrimSpace(raw.Category)
	if strings.EqualFold(category, "invoices") {
		category = string(domain.CategoryInvoice)
	}

	res := domain.EnrichmentResult{
		Category: domain.Category(category),
		Priority: domain.Priority(raw.Priority),
	}

	switch strings.ToLower(category) {
	case "invoice":
		if inv := raw.Invoice; inv != nil {
			res.InvoiceNumber = inv.InvoiceNumber
			res.InvoiceDate = inv.InvoiceDate
			res.DueDate = inv.DueDate
			res.InvoiceAmount = inv.InvoiceAmount
			res.PaymentLink = inv.PaymentLink
			res.BSB = inv.BSB
			res.AccountNumber = inv.AccountNumber
			res.AccountName = inv.AccountName
			res.BillerCode = inv.BillerCode
			res.PaymentReference = inv.PaymentReference
			res.Description = inv.Description
		}
	case "customer requests", "customer request", "request":
		if req := raw.Request; req != nil {
			if s := strings.TrimSpace(req.Summary); s != "" {
				res.Summary = &s
			}
			res.TicketNumber = req.TicketNumber
		}
	case "general", "misc", "miscellaneous", "unknown", "":
		// category and priority only
	default:
		// unrecognised label: same minimal treatment
	}

	return res
}
