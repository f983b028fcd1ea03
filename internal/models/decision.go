package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/customeros/mailtriage/internal/enum"
	triage_errors "github.com/customeros/mailtriage/internal/errors"
)

// DraftReply is a reply body produced by the text generation collaborator.
// The engine inspects it but never writes the body.
type DraftReply struct {
	DraftID            string    `json:"draft_id,omitempty"`
	Subject            string    `json:"subject"`
	Body               string    `json:"body"`
	Recipients         []string  `json:"recipients"`
	Cc                 []string  `json:"cc,omitempty"`
	Bcc                []string  `json:"bcc,omitempty"`
	Tone               string    `json:"tone"`
	CreatedAt          time.Time `json:"created_at"`
	RequiresApproval   bool      `json:"requires_approval"`
	Reasoning          string    `json:"reasoning"`
	Confidence         float64   `json:"confidence"`
	Evidence           []string  `json:"evidence,omitempty"`
	ExternalRecipients int       `json:"external_recipients"`
	ReplyAllRisk       bool      `json:"reply_all_risk"`
}

type FollowUp struct {
	EmailID       string    `json:"email_id"`
	Subject       string    `json:"subject"`
	SuggestedDate time.Time `json:"suggested_date"`
	Reason        string    `json:"reason"`
	DraftMessage  string    `json:"draft_message"`
}

// DecisionRecord is the progressively annotated result for one message.
// It is owned by a single pipeline stage at a time.
//
// Blocking is monotonic: once Block has been called the record never gets a
// draft again and never requires a reply. Notes and flags are append-only.
type DecisionRecord struct {
	Message        *MessageRecord
	Classification *ClassificationResult
	Intent         *IntentDetection
	Priority       *PriorityScore
	Category       enum.Category
	IsSpam         bool
	Deadlines      []string
	FollowUps      []FollowUp
	DNDDecision    enum.DNDDecision

	HasPII           bool
	DomainApproved   bool
	ToneApproved     bool
	DraftOnly        bool
	RequiresApproval bool

	ReceivedAt  time.Time
	ProcessedAt *time.Time

	status        enum.ProcessingStatus
	blocked       bool
	requiresReply bool
	draft         *DraftReply
	notes         []string
	flags         []SecurityFlag
}

func NewDecisionRecord(msg *MessageRecord) *DecisionRecord {
	return &DecisionRecord{
		Message:        msg,
		Category:       enum.CategoryUnknown,
		DNDDecision:    enum.DNDNotApplicable,
		DomainApproved: true,
		ToneApproved:   true,
		ReceivedAt:     msg.Date,
		status:         enum.StatusPending,
	}
}

func (r *DecisionRecord) ID() string {
	return r.Message.MessageID
}

func (r *DecisionRecord) Status() enum.ProcessingStatus {
	return r.status
}

// SetStatus moves the record to a new status. BLOCKED is final. SKIPPED is
// final except that a skipped record may still be blocked, so a blocked record
// always reports BLOCKED.
func (r *DecisionRecord) SetStatus(status enum.ProcessingStatus) bool {
	switch r.status {
	case enum.StatusBlocked:
		return false
	case enum.StatusSkipped:
		if status != enum.StatusBlocked {
			return false
		}
	}
	if r.blocked && status != enum.StatusBlocked {
		return false
	}
	r.status = status
	return true
}

func (r *DecisionRecord) IsBlocked() bool {
	return r.blocked
}

// Block marks the record blocked, drops any draft and the reply requirement.
func (r *DecisionRecord) Block() {
	r.blocked = true
	r.requiresReply = false
	r.draft = nil
}

func (r *DecisionRecord) RequiresReply() bool {
	return r.requiresReply
}

// SetRequiresReply is ignored when enabling a reply on a blocked record.
func (r *DecisionRecord) SetRequiresReply(v bool) {
	if v && r.blocked {
		return
	}
	r.requiresReply = v
}

func (r *DecisionRecord) Draft() *DraftReply {
	return r.draft
}

func (r *DecisionRecord) AttachDraft(draft *DraftReply) error {
	if r.blocked {
		return triage_errors.ErrDraftBlocked
	}
	if draft == nil {
		return triage_errors.ErrNoDraftGenerated
	}
	r.draft = draft
	return nil
}

func (r *DecisionRecord) ClearDraft() {
	r.draft = nil
}

func (r *DecisionRecord) AddNote(format string, args ...any) {
	if len(args) == 0 {
		r.notes = append(r.notes, format)
		return
	}
	r.notes = append(r.notes, fmt.Sprintf(format, args...))
}

func (r *DecisionRecord) Notes() []string {
	out := make([]string, len(r.notes))
	copy(out, r.notes)
	return out
}

func (r *DecisionRecord) AddFlag(flag SecurityFlag) {
	r.flags = append(r.flags, flag)
}

func (r *DecisionRecord) Flags() []SecurityFlag {
	out := make([]SecurityFlag, len(r.flags))
	copy(out, r.flags)
	return out
}

func (r *DecisionRecord) HasFlags() bool {
	return len(r.flags) > 0
}

func (r *DecisionRecord) HasFlag(flagType enum.FlagType) bool {
	for _, f := range r.flags {
		if f.FlagType == flagType {
			return true
		}
	}
	return false
}

// IsVIP is true when the classification marked the sender VIP.
func (r *DecisionRecord) IsVIP() bool {
	return r.Classification != nil && r.Classification.IsVIP
}

func (r *DecisionRecord) Score() int {
	if r.Priority == nil {
		return 0
	}
	return r.Priority.Score
}

func (r *DecisionRecord) MarshalJSON() ([]byte, error) {
	type view struct {
		Message          *MessageRecord        `json:"message"`
		Classification   *ClassificationResult `json:"classification,omitempty"`
		Intent           *IntentDetection      `json:"intent,omitempty"`
		Priority         *PriorityScore        `json:"priority,omitempty"`
		Category         enum.Category         `json:"category"`
		IsSpam           bool                  `json:"is_spam"`
		IsBlocked        bool                  `json:"is_blocked"`
		RequiresReply    bool                  `json:"requires_reply"`
		Status           enum.ProcessingStatus `json:"status"`
		Draft            *DraftReply           `json:"draft_reply,omitempty"`
		FollowUps        []FollowUp            `json:"follow_ups,omitempty"`
		SecurityFlags    []SecurityFlag        `json:"security_flags"`
		HasPII           bool                  `json:"has_pii"`
		DomainApproved   bool                  `json:"domain_approved"`
		ToneApproved     bool                  `json:"tone_approved"`
		DraftOnly        bool                  `json:"draft_only"`
		RequiresApproval bool                  `json:"requires_approval"`
		DNDDecision      enum.DNDDecision      `json:"dnd_decision"`
		Deadlines        []string              `json:"deadlines,omitempty"`
		Notes            []string              `json:"processing_notes"`
		ReceivedAt       time.Time             `json:"received_at"`
		ProcessedAt      *time.Time            `json:"processed_at,omitempty"`
	}
	return json.Marshal(view{
		Message:          r.Message,
		Classification:   r.Classification,
		Intent:           r.Intent,
		Priority:         r.Priority,
		Category:         r.Category,
		IsSpam:           r.IsSpam,
		IsBlocked:        r.blocked,
		RequiresReply:    r.requiresReply,
		Status:           r.status,
		Draft:            r.draft,
		FollowUps:        r.FollowUps,
		SecurityFlags:    r.Flags(),
		HasPII:           r.HasPII,
		DomainApproved:   r.DomainApproved,
		ToneApproved:     r.ToneApproved,
		DraftOnly:        r.DraftOnly,
		RequiresApproval: r.RequiresApproval,
		DNDDecision:      r.DNDDecision,
		Deadlines:        r.Deadlines,
		Notes:            r.Notes(),
		ReceivedAt:       r.ReceivedAt,
		ProcessedAt:      r.ProcessedAt,
	})
}
