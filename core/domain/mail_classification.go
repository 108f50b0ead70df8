package domain

import "strings"

// =============================================================================
// Category / Priority
// =============================================================================

// Category is the closed set of mail categories the pipeline resolves to.
// The string base type lets unexpected backend values travel through the
// flattener unchanged, where the exhaustive switch degrades them to the
// minimal field set.
type Category string

const (
	CategoryGeneral          Category = "General"
	CategoryInvoice          Category = "Invoice"
	CategoryCustomerRequests Category = "Customer Requests"
	CategoryMisc             Category = "Misc"
)

// AllowedCategories lists the canonical categories in their fixed order.
var AllowedCategories = []Category{
	CategoryGeneral,
	CategoryInvoice,
	CategoryCustomerRequests,
	CategoryMisc,
}

// Valid reports whether c is one of the four canonical categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryInvoice, CategoryCustomerRequests, CategoryMisc:
		return true
	}
	return false
}

// CoerceCategory maps an arbitrary backend string onto the canonical set.
// Title-cases first, then falls back to prefix/substring matching so that
// values like "invoice payment" or "customer request" still land on the
// intended category. Anything unrecognised becomes General.
func CoerceCategory(s string) Category {
	c := Category(TitleCase(s))
	if c.Valid() {
		return c
	}
	low := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(low, "invoice"):
		return CategoryInvoice
	case strings.HasPrefix(low, "customer request"):
		return CategoryCustomerRequests
	case strings.Contains(low, "misc"):
		return CategoryMisc
	default:
		return CategoryGeneral
	}
}

// Priority is the urgency label attached to a classification.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of the three allowed priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// CoercePriority title-cases a backend priority string and defaults anything
// outside {High, Medium, Low} to Low.
func CoercePriority(s string) Priority {
	p := Priority(TitleCase(s))
	if p.Valid() {
		return p
	}
	return PriorityLow
}

// Classification is the result of the classification stage, whether it came
// from the model path or the keyword fallback.
type Classification struct {
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
}

// TitleCase capitalises each whitespace-separated word, lowering the rest.
func TitleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
