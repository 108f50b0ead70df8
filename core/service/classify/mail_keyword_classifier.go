// Package classify implements the cheap keyword classifier used as the
// soft pre-check signal and as the fallback of last resort when the
// model-backed path fails.
package classify

import (
	"strings"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
)

// defaultUrgencyWords flags priority High when any of them appears.
var defaultUrgencyWords = []string{
	"urgent", "asap", "immediate", "important", "high priority",
}

// categoryRule is one row of the ordered keyword table. Iteration order is
// significant: the first row with a keyword hit wins.
type categoryRule struct {
	name     string
	category domain.Category
	keywords []string
}

// defaultTable preserves the legacy six-row ordering; the legacy labels fold
// onto the canonical category set (service/team-member/customer request rows
// all resolve to Customer Requests, meeting and timesheets to Misc).
var defaultTable = []categoryRule{
	{name: "invoice", category: domain.CategoryInvoice, keywords: []string{"invoice", "bill", "statement"}},
	{name: "service request", category: domain.CategoryCustomerRequests, keywords: []string{"issue", "support", "ticket"}},
	{name: "team member request", category: domain.CategoryCustomerRequests, keywords: []string{"access", "permission", "request"}},
	{name: "customer request", category: domain.CategoryCustomerRequests, keywords: []string{"client", "customer", "enquiry", "inquiry"}},
	{name: "meeting", category: domain.CategoryMisc, keywords: []string{"meeting", "calendar", "invite"}},
	{name: "timesheets", category: domain.CategoryMisc, keywords: []string{"timesheet", "approval", "work hours"}},
}

// KeywordClassifier scores lower-cased text against fixed keyword sets.
// Pure and deterministic: no I/O, never fails, never blocks. Priority is
// binary, High when an urgency word appears and Low otherwise.
type KeywordClassifier struct {
	urgency []string
	table   []categoryRule
}

// Option customises a KeywordClassifier.
type Option func(*KeywordClassifier)

// WithUrgencyWords overrides the urgency word set.
func WithUrgencyWords(words []string) Option {
	return func(c *KeywordClassifier) {
		if len(words) > 0 {
			c.urgency = words
		}
	}
}

// NewKeywordClassifier builds a classifier with the fixed default table.
func NewKeywordClassifier(opts ...Option) *KeywordClassifier {
	c := &KeywordClassifier{
		urgency: defaultUrgencyWords,
		table:   defaultTable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs the keyword heuristic over subject, body preview and
// attachment names.
func (c *KeywordClassifier) Classify(m *domain.Message) domain.Classification {
	if m == nil {
		return domain.Classification{Category: domain.CategoryGeneral, Priority: domain.PriorityLow}
	}
	text := strings.ToLower(strings.Join([]string{
		m.Subject,
		m.BestBody(),
		strings.Join(m.Attachments, " "),
	}, " "))
	return c.ClassifyText(text)
}

// ClassifyText scores an already-assembled text blob. Input is lower-cased
// here as well, so callers need not pre-normalise.
func (c *KeywordClassifier) ClassifyText(text string) domain.Classification {
	text = strings.ToLower(text)

	priority := domain.PriorityLow
	for _, w := range c.urgency {
		if strings.Contains(text, w) {
			priority = domain.PriorityHigh
			break
		}
	}

	for _, rule := range c.table {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return domain.Classification{Category: rule.category, Priority: priority}
			}
		}
	}

	return domain.Classification{Category: domain.CategoryGeneral, Priority: priority}
}
