package enum

type EmailClassification string

const (
	EmailAutoResponder      EmailClassification = "auto_responder"
	EmailBounceNotification EmailClassification = "bounce_notification"
	EmailBulk               EmailClassification = "bulk_email"
	EmailInternal           EmailClassification = "internal"
	EmailOK                 EmailClassification = "ok"
	EmailSensitive          EmailClassification = "sensitive"
	EmailSpam               EmailClassification = "spam"
)

func (t EmailClassification) String() string {
	return string(t)
}

// Label is the mailbox label a screened message carries, empty for none.
func (t EmailClassification) Label() string {
	switch t {
	case EmailSpam:
		return "SPAM"
	case EmailBulk:
		return "BULK"
	case EmailAutoResponder:
		return "AUTO_REPLY"
	case EmailBounceNotification:
		return "BOUNCE"
	case EmailSensitive:
		return "SENSITIVE"
	default:
		return ""
	}
}
