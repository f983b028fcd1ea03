package models

import (
	"strings"
)

// EmailHeaders is the subset of raw headers the screener looks at.
type EmailHeaders struct {
	AutoSubmitted      bool
	ContentDescription string
	DeliveryStatus     bool
	ListUnsubscribe    bool
	Precedence         string
	ReturnPath         string
	ReturnPathExists   bool
	XAutoreply         string
	XAutoresponse      string
	XLoop              bool
	XFailedRecipients  []string
	ReplyTo            string
	ReplyToExists      bool
	Sender             string
	ForwardedFor       string
	InReplyTo          string
	References         []string
}

// ParseHeaders reads raw header values keyed by canonical header name.
func ParseHeaders(raw map[string][]string, subject string) *EmailHeaders {
	headers := &EmailHeaders{}
	if raw == nil {
		return headers
	}

	getString := func(key string) string {
		if values := raw[key]; len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
		return ""
	}
	headerExists := func(key string) bool {
		_, exists := raw[key]
		return exists
	}

	autoSubmitted := getString("Auto-Submitted")
	headers.AutoSubmitted = autoSubmitted != "" && autoSubmitted != "no"
	headers.ContentDescription = getString("Content-Description")
	headers.DeliveryStatus = headerExists("Delivery-Status") ||
		headerExists("X-Failed-Recipients") ||
		strings.Contains(subject, "Delivery Status Notification") ||
		strings.Contains(subject, "Mail Delivery Failure")
	headers.ListUnsubscribe = headerExists("List-Unsubscribe")
	headers.Precedence = getString("Precedence")
	headers.ReturnPath = strings.Trim(getString("Return-Path"), "<>")
	headers.ReturnPathExists = headerExists("Return-Path")
	headers.XAutoreply = getString("X-Autoreply")
	headers.XAutoresponse = getString("X-Autoresponse")
	headers.XLoop = headerExists("X-Loop")

	if failed := getString("X-Failed-Recipients"); failed != "" {
		recipients := strings.Split(failed, ",")
		for i, recipient := range recipients {
			recipients[i] = strings.TrimSpace(recipient)
		}
		headers.XFailedRecipients = recipients
	}

	headers.ReplyTo = getString("Reply-To")
	headers.ReplyToExists = headerExists("Reply-To")
	headers.Sender = getString("Sender")
	headers.ForwardedFor = getString("X-Forwarded-For")
	if headers.ForwardedFor == "" {
		headers.ForwardedFor = getString("Forwarded-For")
	}
	headers.InReplyTo = getString("In-Reply-To")
	headers.References = strings.Fields(getString("References"))
	return headers
}

// ThreadRoot is the first referenced message id, then In-Reply-To.
func (h *EmailHeaders) ThreadRoot() string {
	if len(h.References) > 0 {
		return h.References[0]
	}
	return h.InReplyTo
}
