package domain

// Message is one fetched mail as handed to the pipeline. The external ID is
// the stable upstream identifier and doubles as the idempotency key for the
// persisted record. Immutable once fetched.
type Message struct {
	ID                string   `json:"id"`
	Subject           string   `json:"subject"`
	Sender            string   `json:"sender,omitempty"`
	ReceivedFrom      string   `json:"received_from,omitempty"`
	ReceivedAt        string   `json:"received_at,omitempty"` // ISO-8601 as fetched
	BodyText          string   `json:"mail_body_text,omitempty"`
	Body              string   `json:"mail_body,omitempty"`
	BodyPreview       string   `json:"body_preview,omitempty"`
	AttachmentText    string   `json:"attachment_text,omitempty"`
	Attachments       []string `json:"attachments,omitempty"`
	AttachmentMethods []string `json:"attachment_methods,omitempty"`
}

// BestBody returns the body text following the fallback chain:
// full text, then plain-text fallback, then preview.
func (m *Message) BestBody() string {
	if m.BodyText != "" {
		return m.BodyText
	}
	if m.Body != "" {
		return m.Body
	}
	return m.BodyPreview
}
