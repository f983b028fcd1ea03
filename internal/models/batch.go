package models

import (
	"time"
)

// RunOptions is the structured action plan for a single batch run.
type RunOptions struct {
	OnlyUrgent       bool   `json:"only_urgent"`
	DraftReplies     bool   `json:"draft_replies"`
	ForceReply       bool   `json:"force_reply"`
	IncludeFollowUps bool   `json:"include_follow_ups"`
	RequireApproval  bool   `json:"require_approval"`
	SenderFilter     string `json:"sender_filter,omitempty"`
	LatestOnly       bool   `json:"latest_only"`
}

func DefaultRunOptions() RunOptions {
	return RunOptions{
		DraftReplies:     true,
		IncludeFollowUps: true,
		RequireApproval:  true,
	}
}

// Batch is one engine run. Records holds the surviving set after conflict
// resolution; superseded records are kept apart for reporting.
type Batch struct {
	ID          string            `json:"batch_id"`
	Records     []*DecisionRecord `json:"records"`
	Superseded  []*DecisionRecord `json:"superseded"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`

	TotalEmails int      `json:"total_emails"`
	Processed   int      `json:"processed"`
	Drafted     int      `json:"drafted"`
	Blocked     int      `json:"blocked"`
	Skipped     int      `json:"skipped"`
	Errors      []string `json:"errors"`
}

func NewBatch(id string, startedAt time.Time) *Batch {
	return &Batch{
		ID:        id,
		StartedAt: startedAt,
		Errors:    []string{},
	}
}

func (b *Batch) AddError(err string) {
	b.Errors = append(b.Errors, err)
}

// RecordByID looks in both the active and superseded sets.
func (b *Batch) RecordByID(id string) *DecisionRecord {
	for _, r := range b.Records {
		if r.ID() == id {
			return r
		}
	}
	for _, r := range b.Superseded {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

// AllRecords returns the active records followed by the superseded ones.
func (b *Batch) AllRecords() []*DecisionRecord {
	out := make([]*DecisionRecord, 0, len(b.Records)+len(b.Superseded))
	out = append(out, b.Records...)
	out = append(out, b.Superseded...)
	return out
}
