package dto

// DraftReplyRequest is sent to the text generation endpoint.
type DraftReplyRequest struct {
	Subject      string `json:"subject"`
	FromEmail    string `json:"fromEmailAddress"`
	FromName     string `json:"fromName,omitempty"`
	Intent       string `json:"intent"`
	EmailBody    string `json:"emailBodyText"`
	Instructions string `json:"instructions"`
}

type DraftReplyResponse struct {
	Body      string `json:"body"`
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}
