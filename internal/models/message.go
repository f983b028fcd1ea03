package models

import (
	"strings"
	"time"
)

// MessageRecord is an already parsed inbound message. The engine never
// mutates it.
type MessageRecord struct {
	MessageID       string    `json:"message_id"`
	ThreadID        string    `json:"thread_id"`
	Subject         string    `json:"subject"`
	Sender          string    `json:"sender"`
	SenderName      string    `json:"sender_name,omitempty"`
	Recipients      []string  `json:"recipients"`
	Cc              []string  `json:"cc,omitempty"`
	Bcc             []string  `json:"bcc,omitempty"`
	Date            time.Time `json:"date"`
	HasAttachments  bool      `json:"has_attachments"`
	AttachmentCount int       `json:"attachment_count"`
	Labels          []string  `json:"labels,omitempty"`
	Snippet         string    `json:"snippet,omitempty"`
	BodyText        string    `json:"body_text"`
	BodyHTML        string    `json:"body_html,omitempty"`
}

// FullText is the lower-cased subject and plain body joined by a newline,
// the text every keyword stage scans.
func (m *MessageRecord) FullText() string {
	return strings.ToLower(m.Subject + "\n" + m.BodyText)
}

// RawText is FullText without lower-casing, used by the regex based scanners.
func (m *MessageRecord) RawText() string {
	return m.Subject + "\n" + m.BodyText
}

func (m *MessageRecord) HasLabel(label string) bool {
	for _, l := range m.Labels {
		if l == label {
			return true
		}
	}
	return false
}
