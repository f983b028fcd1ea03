package models

import (
	"github.com/customeros/mailtriage/internal/enum"
)

// ClassificationResult describes who sent a message. It is derived once
// per message and never changed afterwards.
type ClassificationResult struct {
	SenderType   enum.SenderType `json:"sender_type"`
	SenderEmail  string          `json:"sender_email"`
	SenderDomain string          `json:"sender_domain"`
	IsVIP        bool            `json:"is_vip"`
	IsInternal   bool            `json:"is_internal"`
	Confidence   float64         `json:"confidence"`
	Notes        string          `json:"notes"`
}

// IntentDetection is the keyword level reading of a message. Intents is
// never empty; the first entry is the primary intent.
type IntentDetection struct {
	Intents          []enum.Intent `json:"intents"`
	KeywordsDetected []string      `json:"keywords_detected"`
	UrgencyKeywords  []string      `json:"urgency_keywords"`
	ActionRequired   bool          `json:"action_required"`
	QuestionDetected bool          `json:"question_detected"`
	Confidence       float64       `json:"confidence"`
}

func (d *IntentDetection) PrimaryIntent() enum.Intent {
	if d == nil || len(d.Intents) == 0 {
		return enum.IntentInformational
	}
	return d.Intents[0]
}

func (d *IntentDetection) Has(intent enum.Intent) bool {
	if d == nil {
		return false
	}
	for _, i := range d.Intents {
		if i == intent {
			return true
		}
	}
	return false
}

// Factor names used in PriorityScore.Factors.
const (
	FactorSenderImportance = "sender_importance"
	FactorUrgencyKeywords  = "urgency_keywords"
	FactorActionRequired   = "action_required"
	FactorEmailAge         = "email_age"
	FactorThreadContext    = "thread_context"
	FactorSpecialCategory  = "special_category"
	FactorHiddenUrgency    = "hidden_urgency"
)

// FactorOrder is the fixed order factors are computed and reported in.
var FactorOrder = []string{
	FactorSenderImportance,
	FactorUrgencyKeywords,
	FactorActionRequired,
	FactorEmailAge,
	FactorThreadContext,
	FactorSpecialCategory,
	FactorHiddenUrgency,
}

type PriorityScore struct {
	Score         int                `json:"score"`
	Level         enum.PriorityLevel `json:"priority_level"`
	Factors       map[string]int     `json:"factors"`
	Reasoning     string             `json:"reasoning"`
	Evidence      []string           `json:"evidence"`
	Confidence    float64            `json:"confidence"`
	HiddenUrgency bool               `json:"hidden_urgency"`
}

type SecurityFlag struct {
	FlagType      enum.FlagType  `json:"flag_type"`
	Severity      enum.Severity  `json:"severity"`
	Description   string         `json:"description"`
	Details       map[string]any `json:"details,omitempty"`
	BlocksSending bool           `json:"blocks_sending"`
}
