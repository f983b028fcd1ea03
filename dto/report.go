package dto

import (
	"time"

	"github.com/customeros/mailtriage/internal/models"
)

// Report is the final response queue handed to the user for one batch.
type Report struct {
	BatchID      string            `json:"batch_id"`
	Summary      ReportSummary     `json:"summary"`
	TopEmails    []EmailItem       `json:"top_10_emails"`
	DraftReplies []DraftItem       `json:"draft_replies"`
	FollowUps    []models.FollowUp `json:"follow_ups"`
	BlockedItems []BlockedItem     `json:"blocked_items"`
	Warnings     []string          `json:"warnings"`
	Errors       []string          `json:"errors"`
	Metrics      Metrics           `json:"metrics"`
}

type ReportSummary struct {
	TotalProcessed int `json:"total_processed"`
	HighPriority   int `json:"high_priority"`
	MediumPriority int `json:"medium_priority"`
	LowPriority    int `json:"low_priority"`
	DraftsCreated  int `json:"drafts_created"`
	NeedsApproval  int `json:"needs_approval"`
	Blocked        int `json:"blocked"`
	FollowUps      int `json:"follow_ups"`
}

type EmailItem struct {
	MessageID         string    `json:"message_id"`
	ThreadID          string    `json:"thread_id"`
	Subject           string    `json:"subject"`
	From              string    `json:"from"`
	Date              time.Time `json:"date"`
	PriorityScore     int       `json:"priority_score"`
	PriorityReasoning string    `json:"priority_reasoning"`
	Category          string    `json:"category"`
	Status            string    `json:"status"`
	HasDraft          bool      `json:"has_draft"`
	RequiresAction    bool      `json:"requires_action"`
	Snippet           string    `json:"snippet"`
	Reasons           []string  `json:"reasons"`
}

type DraftItem struct {
	EmailID          string   `json:"email_id"`
	OriginalSubject  string   `json:"original_subject"`
	ReplySubject     string   `json:"reply_subject"`
	ReplyBody        string   `json:"reply_body"`
	To               []string `json:"to"`
	Cc               []string `json:"cc"`
	RequiresApproval bool     `json:"requires_approval"`
	SecurityFlags    []string `json:"security_flags"`
}

type BlockedItem struct {
	MessageID     string     `json:"message_id"`
	Subject       string     `json:"subject"`
	From          string     `json:"from"`
	Reason        string     `json:"reason"`
	SecurityFlags []FlagItem `json:"security_flags"`
}

type FlagItem struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type Metrics struct {
	TotalEmails           int            `json:"total_emails"`
	HighPriority          int            `json:"high_priority"`
	MediumPriority        int            `json:"medium_priority"`
	LowPriority           int            `json:"low_priority"`
	DraftsCreated         int            `json:"drafts_created"`
	FollowUpsScheduled    int            `json:"follow_ups_scheduled"`
	BlockedItems          int            `json:"blocked_items"`
	Categories            map[string]int `json:"categories"`
	TimeSavedMinutes      int            `json:"time_saved_minutes"`
	VIPEmails             int            `json:"vip_emails"`
	ApprovalRequiredCount int            `json:"approval_required_count"`
	RiskDetectionCount    int            `json:"risk_detection_count"`
	HiddenUrgencyCount    int            `json:"hidden_urgency_count"`
	ReplyAllRisks         int            `json:"reply_all_risks"`
}
