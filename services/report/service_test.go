package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

var now = time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

func record(t *testing.T, id string, score int, level enum.PriorityLevel) *models.DecisionRecord {
	t.Helper()
	rec := models.NewDecisionRecord(&models.MessageRecord{
		MessageID: id,
		ThreadID:  "thread-" + id,
		Sender:    id + "@example.com",
		Subject:   "Subject " + id,
		BodyText:  "Body of " + id,
		Date:      now,
	})
	rec.Priority = &models.PriorityScore{Score: score, Level: level, Reasoning: "r", Evidence: []string{"e-" + id}}
	rec.Category = enum.CategoryAction
	return rec
}

func withDraft(t *testing.T, rec *models.DecisionRecord, approval bool) *models.DecisionRecord {
	t.Helper()
	require.NoError(t, rec.AttachDraft(&models.DraftReply{
		Subject:          "Re: " + rec.Message.Subject,
		Body:             "Thanks",
		Recipients:       []string{rec.Message.Sender},
		RequiresApproval: approval,
	}))
	return rec
}

func TestBuild_QueueAndSummary(t *testing.T) {
	high := withDraft(t, record(t, "a", 85, enum.PriorityHigh), true)
	high.Classification = &models.ClassificationResult{IsVIP: true}
	medium := withDraft(t, record(t, "b", 55, enum.PriorityMedium), false)
	medium.FollowUps = []models.FollowUp{{EmailID: "b", Subject: "Follow-up: Subject b"}}
	low := record(t, "c", 20, enum.PriorityLow)

	blocked := record(t, "d", 95, enum.PriorityHigh)
	blocked.AddNote("Priority score: 95/100 (HIGH)")
	blocked.AddNote("ESCALATED: Contains legal/financial commitments - requires immediate human review")
	blocked.AddFlag(models.SecurityFlag{
		FlagType:      enum.FlagLegalFinanceCritical,
		Severity:      enum.SeverityCritical,
		Description:   "Legal commitment detected",
		BlocksSending: true,
	})
	blocked.Block()
	blocked.SetStatus(enum.StatusBlocked)

	batch := models.NewBatch("batch-1", now)
	batch.Records = []*models.DecisionRecord{low, blocked, medium, high}
	batch.AddError("input 4: message is missing")

	report := NewReportService(logger.NewNopLogger()).Build(batch)

	assert.Equal(t, "batch-1", report.BatchID)
	assert.Equal(t, 4, report.Summary.TotalProcessed)
	assert.Equal(t, 1, report.Summary.HighPriority)
	assert.Equal(t, 1, report.Summary.MediumPriority)
	assert.Equal(t, 1, report.Summary.LowPriority)
	assert.Equal(t, 2, report.Summary.DraftsCreated)
	assert.Equal(t, 1, report.Summary.NeedsApproval)
	assert.Equal(t, 1, report.Summary.Blocked)
	assert.Equal(t, 1, report.Summary.FollowUps)

	require.Len(t, report.TopEmails, 3)
	assert.Equal(t, "a", report.TopEmails[0].MessageID)
	assert.Equal(t, "b", report.TopEmails[1].MessageID)
	assert.Equal(t, "c", report.TopEmails[2].MessageID)
	assert.True(t, report.TopEmails[0].HasDraft)
	assert.Equal(t, []string{"e-a"}, report.TopEmails[0].Reasons)

	require.Len(t, report.DraftReplies, 2)
	assert.Equal(t, "b", report.DraftReplies[0].EmailID)
	assert.Equal(t, "Re: Subject b", report.DraftReplies[0].ReplySubject)
	assert.Len(t, report.FollowUps, 1)

	require.Len(t, report.BlockedItems, 1)
	item := report.BlockedItems[0]
	assert.Equal(t, "d", item.MessageID)
	assert.Equal(t, "Priority score: 95/100 (HIGH) | ESCALATED: Contains legal/financial commitments - requires immediate human review", item.Reason)
	require.Len(t, item.SecurityFlags, 1)
	assert.Equal(t, "legal_finance_critical", item.SecurityFlags[0].Type)
	assert.Equal(t, "critical", item.SecurityFlags[0].Severity)

	assert.Equal(t, []string{"Subject d: Legal commitment detected"}, report.Warnings)
	assert.Equal(t, []string{"input 4: message is missing"}, report.Errors)
}

func TestBuild_TopEmailsIsCapped(t *testing.T) {
	batch := models.NewBatch("batch-2", now)
	for i := 0; i < 15; i++ {
		batch.Records = append(batch.Records, record(t, string(rune('a'+i)), i, enum.PriorityLow))
	}

	report := NewReportService(logger.NewNopLogger()).Build(batch)

	require.Len(t, report.TopEmails, TopEmailsLimit)
	assert.Equal(t, 14, report.TopEmails[0].PriorityScore)
	assert.Equal(t, 5, report.TopEmails[9].PriorityScore)
}

func TestBuild_SupersededAreListedAsBlocked(t *testing.T) {
	old := record(t, "old", 40, enum.PriorityLow)
	old.AddNote("Superseded by newer email from same sender: new")
	old.Block()
	batch := models.NewBatch("batch-3", now)
	batch.Records = []*models.DecisionRecord{record(t, "new", 40, enum.PriorityLow)}
	batch.Superseded = []*models.DecisionRecord{old}

	report := NewReportService(logger.NewNopLogger()).Build(batch)

	assert.Equal(t, 1, report.Summary.TotalProcessed)
	require.Len(t, report.BlockedItems, 1)
	assert.Equal(t, "old", report.BlockedItems[0].MessageID)
	assert.Empty(t, report.BlockedItems[0].SecurityFlags)
}

func TestBuild_EmptyBatch(t *testing.T) {
	report := NewReportService(logger.NewNopLogger()).Build(models.NewBatch("empty", now))

	assert.Empty(t, report.TopEmails)
	assert.NotNil(t, report.DraftReplies)
	assert.NotNil(t, report.BlockedItems)
	assert.Equal(t, 0, report.Metrics.TimeSavedMinutes)
	assert.Empty(t, report.Metrics.Categories)
}

func TestCalculateMetrics(t *testing.T) {
	hidden := withDraft(t, record(t, "a", 63, enum.PriorityMedium), true)
	hidden.Priority.HiddenUrgency = true
	hidden.AddFlag(models.SecurityFlag{FlagType: enum.FlagReplyAllRisk, Severity: enum.SeverityMedium})
	hidden.AddFlag(models.SecurityFlag{FlagType: enum.FlagToneViolation, Severity: enum.SeverityLow})
	hidden.FollowUps = []models.FollowUp{{EmailID: "a"}}
	spam := record(t, "b", 5, enum.PriorityNotRequired)
	spam.Category = enum.CategorySpam
	spam.Block()

	m := CalculateMetrics([]*models.DecisionRecord{hidden, spam})

	assert.Equal(t, 2, m.TotalEmails)
	assert.Equal(t, 1, m.MediumPriority)
	assert.Equal(t, 1, m.DraftsCreated)
	assert.Equal(t, 1, m.ApprovalRequiredCount)
	assert.Equal(t, 1, m.FollowUpsScheduled)
	assert.Equal(t, 1, m.BlockedItems)
	assert.Equal(t, 1, m.HiddenUrgencyCount)
	assert.Equal(t, 1, m.ReplyAllRisks)
	assert.Equal(t, 2, m.RiskDetectionCount)
	assert.Equal(t, map[string]int{"action": 1, "spam": 1}, m.Categories)
	// 2*2 + 1 + 5 + 2
	assert.Equal(t, 12, m.TimeSavedMinutes)
}

func TestSnippet(t *testing.T) {
	msg := &models.MessageRecord{BodyText: "Call me at 555-123-4567\n\nor  reply here."}
	assert.Equal(t, "Call me at XXX-XXX-XXXX or reply here.", Snippet(msg))

	msg.Snippet = "Preview text"
	assert.Equal(t, "Preview text", Snippet(msg))
}
