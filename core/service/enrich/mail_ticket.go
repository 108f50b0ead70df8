// Package enrich turns raw extraction output into the flat, store-ready
// enrichment record, and tracks batch progress while doing so.
package enrich

import (
	"strings"
	"time"
)

// TicketDate parses an ISO-8601 received timestamp into the date component
// used for ticket numbers. Unparseable or empty input falls back to the
// current UTC date so ticket generation never fails.
func TicketDate(receivedAt string) time.Time {
	receivedAt = strings.TrimSpace(receivedAt)
	if receivedAt != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, receivedAt); err == nil {
				return t
			}
		}
	}
	return time.Now().UTC()
}

// TicketNumber builds the deterministic ticket identifier
// <prefix><YYYYMMDD>-<suffix>, where the suffix is the last six alphanumeric
// characters of the external id, uppercased. Ids shorter than six
// alphanumerics use whatever is there.
func TicketNumber(prefix string, date time.Time, externalID string) string {
	if prefix == "" {
		prefix = "REQ-"
	}

	var b strings.Builder
	for _, r := range externalID {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	alnum := b.String()
	if len(alnum) > 6 {
		alnum = alnum[len(alnum)-6:]
	}

	return prefix + date.Format("20060102") + "-" + strings.ToUpper(alnum)
}
